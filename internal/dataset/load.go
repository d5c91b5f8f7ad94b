package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"ictal/internal/logging"
	"ictal/internal/sequence"
)

// Column headers expected in prediction tables.
const (
	ColumnVideoID      = "VideoID"
	ColumnGT           = "GT_Segments"
	ColumnPred         = "Pred_Segments"
	ColumnDeviceClass  = "DeviceClass"
	ColumnIllumination = "Illumination"
)

var utf8BOM = []byte("\xef\xbb\xbf")

var requiredColumns = []string{ColumnVideoID, ColumnGT, ColumnPred}

// ErrMissingColumn indicates the table header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// row mirrors one CSV line before typed parsing.
type row struct {
	VideoID      string `csv:"VideoID"`
	GT           string `csv:"GT_Segments"`
	Pred         string `csv:"Pred_Segments"`
	DeviceClass  string `csv:"DeviceClass"`
	Illumination string `csv:"Illumination"`
}

// LoadOptions tunes loading.
type LoadOptions struct {
	Logger *slog.Logger
}

// LoadFile opens path and loads it.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	ds, err := Load(ctx, file, opts)
	if err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// Load decodes a prediction table. Rows with the wrong number of fields,
// malformed sequences or duplicate video IDs are skipped and reported; a
// missing required column is an error.
func Load(ctx context.Context, r io.Reader, opts LoadOptions) (Dataset, error) {
	logger := logging.NewComponentLogger(opts.Logger, "dataset")

	data, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	table, err := readTable(data)
	if err != nil {
		return Dataset{}, err
	}

	var rows []row
	if err := gocsv.UnmarshalCSV(table, &rows); err != nil {
		return Dataset{}, fmt.Errorf("decode csv: %w", err)
	}

	ds := Dataset{Records: make([]Record, 0, len(rows))}
	skip := func(skipped Skipped, err error) {
		ds.Skipped = append(ds.Skipped, skipped)
		logging.WarnWithContext(logging.WithContext(logging.WithVideoID(ctx, skipped.VideoID), logger),
			"dataset row skipped", "dataset_row_skipped",
			logging.Int("row", skipped.Row),
			logging.Error(err),
			logging.String(logging.FieldImpact, "video excluded from metrics"),
			logging.String(logging.FieldErrorHint, "fix the row in the source table"),
		)
	}
	for _, ragged := range table.ragged {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		err := fmt.Errorf("row has %d fields, header has %d", ragged.fields, len(table.header))
		skip(Skipped{Row: ragged.row, VideoID: ragged.videoID, Reason: err.Error()}, err)
	}

	seen := make(map[string]int, len(rows))
	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		rowNum := table.rowNums[i]
		record, err := raw.record()
		if err == nil {
			if first, dup := seen[record.VideoID]; dup {
				err = fmt.Errorf("duplicate video id (first seen in row %d)", first)
			} else {
				seen[record.VideoID] = rowNum
			}
		}
		if err != nil {
			skip(Skipped{Row: rowNum, VideoID: strings.TrimSpace(raw.VideoID), Reason: err.Error()}, err)
			continue
		}
		ds.Records = append(ds.Records, record)
	}
	sort.SliceStable(ds.Skipped, func(i, j int) bool { return ds.Skipped[i].Row < ds.Skipped[j].Row })

	logger.Debug("dataset loaded",
		logging.Int("records", len(ds.Records)),
		logging.Int("skipped", len(ds.Skipped)),
	)
	return ds, nil
}

func (r row) record() (Record, error) {
	id := strings.TrimSpace(r.VideoID)
	if id == "" {
		return Record{}, errors.New("empty video id")
	}
	gt, err := sequence.Parse(r.GT)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", ColumnGT, err)
	}
	pred, err := sequence.Parse(r.Pred)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", ColumnPred, err)
	}
	tags := map[string]string{}
	if v := strings.TrimSpace(r.DeviceClass); v != "" {
		tags[TagDeviceClass] = v
	}
	if v := strings.TrimSpace(r.Illumination); v != "" {
		tags[TagIllumination] = v
	}
	return Record{VideoID: id, GT: gt, Pred: pred, Tags: tags}, nil
}

type raggedRow struct {
	row     int
	videoID string
	fields  int
}

// table holds the header and the well-formed rows for gocsv. Rows whose field
// count differs from the header are set aside in ragged.
type table struct {
	header  []string
	records [][]string
	rowNums []int
	ragged  []raggedRow
	next    int
}

func readTable(data []byte) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
	}

	header := all[0]
	present := make(map[string]int, len(header))
	for i, name := range header {
		present[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := present[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	t := &table{header: header, records: [][]string{header}}
	idCol := present[ColumnVideoID]
	for i, rec := range all[1:] {
		rowNum := i + 1
		if len(rec) != len(header) {
			var id string
			if idCol < len(rec) {
				id = strings.TrimSpace(rec[idCol])
			}
			t.ragged = append(t.ragged, raggedRow{row: rowNum, videoID: id, fields: len(rec)})
			continue
		}
		t.records = append(t.records, rec)
		t.rowNums = append(t.rowNums, rowNum)
	}
	return t, nil
}

// Read and ReadAll satisfy gocsv.CSVReader.
func (t *table) Read() ([]string, error) {
	if t.next >= len(t.records) {
		return nil, io.EOF
	}
	rec := t.records[t.next]
	t.next++
	return rec, nil
}

func (t *table) ReadAll() ([][]string, error) {
	rest := t.records[t.next:]
	t.next = len(t.records)
	return rest, nil
}
