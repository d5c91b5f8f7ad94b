package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"ictal/internal/logging"
)

// Row is one converted video, laid out with the prediction table's columns so
// the output can be annotated with ground truth and loaded directly.
type Row struct {
	VideoID      string  `csv:"VideoID"`
	GT           string  `csv:"GT_Segments"`
	Pred         string  `csv:"Pred_Segments"`
	DeviceClass  string  `csv:"DeviceClass"`
	Illumination string  `csv:"Illumination"`
	Symptom      string  `csv:"Symptom"`
	Segments     int     `csv:"Segments"`
	Ambiguous    string  `csv:"Ambiguous_Segments"`
	TotalSeconds float64 `csv:"Inference_Seconds"`
}

// ConvertOptions tunes ConvertDir.
type ConvertOptions struct {
	// Symptom labels the rows; defaults to the directory name.
	Symptom string
	Workers int
	Logger  *slog.Logger
}

// ConvertDir parses every *.txt transcript in dir, one per video named after
// the file stem, and returns rows sorted by video ID. A transcript that cannot
// be read or parsed is logged and left out; only directory and context errors
// fail the call.
func ConvertDir(ctx context.Context, dir string, opts ConvertOptions) ([]Row, error) {
	logger := logging.NewComponentLogger(opts.Logger, "transcript")
	symptom := strings.TrimSpace(opts.Symptom)
	if symptom == "" {
		symptom = filepath.Base(filepath.Clean(dir))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read transcript dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]converted, len(names))
	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := convertFile(filepath.Join(dir, name), symptom)
			results[i] = converted{row: row, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(results))
	skipped := 0
	for i, res := range results {
		if res.err != nil {
			skipped++
			logging.WarnWithContext(logger, "transcript skipped", "transcript_skipped",
				logging.String("file", names[i]),
				logging.Error(res.err),
				logging.String(logging.FieldImpact, "video left out of the converted table"),
				logging.String(logging.FieldErrorHint, "fix or remove the transcript and convert again"),
			)
			continue
		}
		row := res.row
		if row.Ambiguous != "" {
			logging.WarnWithContext(logger.With(logging.String(logging.FieldVideoID, row.VideoID)),
				"ambiguous verdicts treated as absent", "transcript_ambiguous_verdict",
				logging.String("segments", row.Ambiguous),
				logging.String(logging.FieldImpact, "segments counted as negative predictions"),
				logging.String(logging.FieldErrorHint, "review the decide answers in the transcript"),
			)
		}
		rows = append(rows, row)
	}
	logger.Info("transcripts converted",
		logging.String("dir", dir),
		logging.String("symptom", symptom),
		logging.Int("videos", len(rows)),
		logging.Int("skipped", skipped),
	)
	return rows, nil
}

type converted struct {
	row Row
	err error
}

func convertFile(path, symptom string) (Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return Row{}, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	tr, err := Parse(file)
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	preds, ambiguous := tr.Predictions()
	idx := make([]string, len(ambiguous))
	for i, a := range ambiguous {
		idx[i] = strconv.Itoa(a)
	}
	return Row{
		VideoID:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Pred:         preds.String(),
		Symptom:      symptom,
		Segments:     len(tr.Segments),
		Ambiguous:    strings.Join(idx, " "),
		TotalSeconds: tr.Total,
	}, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
