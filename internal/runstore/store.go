package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"ictal/internal/dataset"
	"ictal/internal/evaluation"
	"ictal/internal/metrics"
)

var (
	// ErrNotFound indicates no run has the requested ID.
	ErrNotFound = errors.New("run not found")
	// ErrLocked indicates another process is writing to the store.
	ErrLocked = errors.New("run store is locked by another process")
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Summary is one row of the run listing.
type Summary struct {
	RunID       string        `json:"run_id"`
	Dataset     string        `json:"dataset"`
	MinDuration int           `json:"min_duration"`
	Videos      int           `json:"videos"`
	Skipped     int           `json:"skipped"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Open initializes or connects to <dir>/runs.db and applies migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create runs directory: %w", err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: flock.New(filepath.Join(dir, "runs.lock"))}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save records rep and its subset results atomically.
func (s *Store) Save(ctx context.Context, rep evaluation.Report) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, min_duration, videos, skipped, started_at, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID,
		rep.Dataset,
		rep.MinDuration,
		rep.Videos,
		len(rep.Skipped),
		rep.StartedAt.UTC().Format(time.RFC3339Nano),
		rep.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, sr := range rep.Subsets {
		for _, v := range []struct {
			name string
			res  metrics.Result
		}{
			{evaluation.VariantRaw, sr.Raw},
			{evaluation.VariantSmoothed, sr.Smoothed},
		} {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO subset_results (
                    run_id, position, subset, variant, videos, removed, tp, fp, tn, fn,
                    specificity, recall, specificity_defined, recall_defined
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rep.RunID, i, sr.Name(), v.name, sr.Videos, sr.Removed,
				v.res.TP, v.res.FP, v.res.TN, v.res.FN,
				v.res.Specificity, v.res.Recall,
				boolToInt(v.res.SpecificityDefined), boolToInt(v.res.RecallDefined),
			)
			if err != nil {
				return fmt.Errorf("insert subset %q %s: %w", sr.Name(), v.name, err)
			}
		}
	}

	for _, skip := range rep.Skipped {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO skipped_records (run_id, row_number, video_id, reason) VALUES (?, ?, ?, ?)",
			rep.RunID, skip.Row, skip.VideoID, skip.Reason,
		); err != nil {
			return fmt.Errorf("insert skipped record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT id, dataset, min_duration, videos, skipped, started_at, duration_ms
              FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Get reconstructs a saved report.
func (s *Store) Get(ctx context.Context, runID string) (evaluation.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dataset, min_duration, videos, skipped, started_at, duration_ms FROM runs WHERE id = ?`, runID)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return evaluation.Report{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return evaluation.Report{}, err
	}

	rep := evaluation.Report{
		RunID:       summary.RunID,
		Dataset:     summary.Dataset,
		MinDuration: summary.MinDuration,
		Videos:      summary.Videos,
		StartedAt:   summary.StartedAt,
		Duration:    summary.Duration,
	}
	if rep.Subsets, err = s.subsetResults(ctx, runID); err != nil {
		return evaluation.Report{}, err
	}
	if rep.Skipped, err = s.skippedRecords(ctx, runID); err != nil {
		return evaluation.Report{}, err
	}
	return rep, nil
}

// Delete removes a run and its results.
func (s *Store) Delete(ctx context.Context, runID string) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

func (s *Store) subsetResults(ctx context.Context, runID string) ([]evaluation.SubsetReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, subset, variant, videos, removed, tp, fp, tn, fn,
                specificity, recall, specificity_defined, recall_defined
         FROM subset_results WHERE run_id = ? ORDER BY position, variant`, runID)
	if err != nil {
		return nil, fmt.Errorf("query subset results: %w", err)
	}
	defer rows.Close()

	var out []evaluation.SubsetReport
	for rows.Next() {
		var (
			position, videos, removed int
			name, variant             string
			res                       metrics.Result
			specDefined, recDefined   int
		)
		if err := rows.Scan(&position, &name, &variant, &videos, &removed,
			&res.TP, &res.FP, &res.TN, &res.FN,
			&res.Specificity, &res.Recall, &specDefined, &recDefined); err != nil {
			return nil, fmt.Errorf("scan subset result: %w", err)
		}
		res.SpecificityDefined = specDefined != 0
		res.RecallDefined = recDefined != 0

		if len(out) == 0 || len(out)-1 < position {
			out = append(out, evaluation.SubsetReport{
				Subset:  dataset.Subset{Name: name},
				Videos:  videos,
				Removed: removed,
			})
		}
		sr := &out[len(out)-1]
		switch variant {
		case evaluation.VariantRaw:
			sr.Raw = res
		case evaluation.VariantSmoothed:
			sr.Smoothed = res
		}
	}
	return out, rows.Err()
}

func (s *Store) skippedRecords(ctx context.Context, runID string) ([]dataset.Skipped, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT row_number, video_id, reason FROM skipped_records WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, fmt.Errorf("query skipped records: %w", err)
	}
	defer rows.Close()

	var out []dataset.Skipped
	for rows.Next() {
		var skip dataset.Skipped
		if err := rows.Scan(&skip.Row, &skip.VideoID, &skip.Reason); err != nil {
			return nil, fmt.Errorf("scan skipped record: %w", err)
		}
		out = append(out, skip)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var (
		summary    Summary
		started    string
		durationMS int64
	)
	if err := row.Scan(&summary.RunID, &summary.Dataset, &summary.MinDuration, &summary.Videos,
		&summary.Skipped, &started, &durationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, err
		}
		return Summary{}, fmt.Errorf("scan run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Summary{}, fmt.Errorf("parse started_at: %w", err)
	}
	summary.StartedAt = ts
	summary.Duration = time.Duration(durationMS) * time.Millisecond
	return summary, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
