package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ictal/internal/config"
	"ictal/internal/dataset"
	"ictal/internal/logging"
	"ictal/internal/metrics"
	"ictal/internal/smoothing"
)

// Variant names used in reports and persisted results.
const (
	VariantRaw      = "raw"
	VariantSmoothed = "smoothed"
)

// SubsetReport compares raw and smoothed predictions for one subset.
type SubsetReport struct {
	Subset   dataset.Subset `json:"subset"`
	Videos   int            `json:"videos"`
	Removed  int            `json:"removed_segments"`
	Raw      metrics.Result `json:"raw"`
	Smoothed metrics.Result `json:"smoothed"`
}

// Name returns the subset display name.
func (s SubsetReport) Name() string {
	return s.Subset.Name
}

// Report is the outcome of one evaluation run.
type Report struct {
	RunID       string            `json:"run_id"`
	Dataset     string            `json:"dataset"`
	MinDuration int               `json:"min_duration"`
	Videos      int               `json:"videos"`
	Subsets     []SubsetReport    `json:"subsets"`
	Skipped     []dataset.Skipped `json:"skipped,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
}

// Runner evaluates datasets.
type Runner struct {
	MinDuration int
	Workers     int
	Subsets     []dataset.Subset
	Logger      *slog.Logger

	now func() time.Time
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		MinDuration: cfg.Filter.MinDuration,
		Workers:     cfg.Evaluation.Workers,
		Subsets:     SubsetsFromConfig(cfg.Evaluation.Subsets),
		Logger:      logger,
	}
}

// SubsetsFromConfig converts configured subsets to dataset selectors.
func SubsetsFromConfig(in []config.Subset) []dataset.Subset {
	out := make([]dataset.Subset, 0, len(in))
	for _, s := range in {
		out = append(out, dataset.Subset{
			Name:       s.Name,
			Tag:        s.Tag,
			Match:      s.Match,
			Value:      s.Value,
			IgnoreCase: s.IgnoreCase,
		})
	}
	return out
}

// Run smooths ds and evaluates every subset. The dataset's records are not
// modified; smoothed sequences live on copies held by the runner.
func (r *Runner) Run(ctx context.Context, ds dataset.Dataset) (Report, error) {
	now := r.now
	if now == nil {
		now = time.Now
	}
	started := now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "evaluation"))

	subsets := r.Subsets
	if len(subsets) == 0 {
		subsets = []dataset.Subset{{Name: "All videos"}}
	}

	records, skipped, err := r.smoothAll(ctx, ds.Records, logger)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		RunID:       runID,
		Dataset:     ds.Source,
		MinDuration: r.MinDuration,
		Videos:      len(records),
		Skipped:     append(append([]dataset.Skipped(nil), ds.Skipped...), skipped...),
		StartedAt:   started.UTC(),
	}

	for _, subset := range subsets {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		sr, err := evaluateSubset(subset, records)
		if err != nil {
			return Report{}, fmt.Errorf("subset %q: %w", subset.Name, err)
		}
		subsetLogger := logging.WithContext(logging.WithSubset(ctx, subset.Name), logging.NewComponentLogger(r.Logger, "evaluation"))
		if sr.Videos == 0 {
			subsetLogger.Info("subset has no videos")
		} else {
			subsetLogger.Info("subset evaluated",
				logging.Int("videos", sr.Videos),
				logging.Float64("raw_specificity", sr.Raw.Specificity),
				logging.Float64("raw_recall", sr.Raw.Recall),
				logging.Float64("smoothed_specificity", sr.Smoothed.Specificity),
				logging.Float64("smoothed_recall", sr.Smoothed.Recall),
			)
		}
		rep.Subsets = append(rep.Subsets, sr)
	}

	rep.Duration = now().Sub(started)
	logger.Info("evaluation complete",
		logging.Int("videos", rep.Videos),
		logging.Int("skipped", len(rep.Skipped)),
		logging.Duration("elapsed", rep.Duration),
	)
	return rep, nil
}

type outcome struct {
	record dataset.Record
	err    error
}

func (r *Runner) smoothAll(ctx context.Context, in []dataset.Record, logger *slog.Logger) ([]dataset.Record, []dataset.Skipped, error) {
	filter := smoothing.New(r.MinDuration)
	results := make([]outcome, len(in))

	g, gctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := in[i]
			if err := rec.GT.Validate(); err != nil {
				results[i] = outcome{err: fmt.Errorf("gt: %w", err)}
				return nil
			}
			smoothed, err := filter.Apply(rec.Pred)
			if err != nil {
				results[i] = outcome{err: fmt.Errorf("pred: %w", err)}
				return nil
			}
			rec.Smoothed = smoothed
			results[i] = outcome{record: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	records := make([]dataset.Record, 0, len(in))
	var skipped []dataset.Skipped
	for i, res := range results {
		if res.err != nil {
			skipped = append(skipped, dataset.Skipped{VideoID: in[i].VideoID, Reason: res.err.Error()})
			logging.WarnWithContext(logger.With(logging.String(logging.FieldVideoID, in[i].VideoID)),
				"record skipped", "record_skipped",
				logging.Error(res.err),
				logging.String(logging.FieldImpact, "video excluded from metrics"),
			)
			continue
		}
		records = append(records, res.record)
	}
	return records, skipped, nil
}

func evaluateSubset(subset dataset.Subset, records []dataset.Record) (SubsetReport, error) {
	selected := subset.Select(records)
	sr := SubsetReport{Subset: subset, Videos: len(selected)}

	var raw, smoothed metrics.Counts
	for _, rec := range selected {
		if err := raw.Add(rec.GT, rec.Pred); err != nil {
			return SubsetReport{}, fmt.Errorf("%s raw: %w", rec.VideoID, err)
		}
		if err := smoothed.Add(rec.GT, rec.Smoothed); err != nil {
			return SubsetReport{}, fmt.Errorf("%s smoothed: %w", rec.VideoID, err)
		}
		sr.Removed += smoothing.Removed(rec.Pred, rec.Smoothed)
	}
	sr.Raw = raw.Result()
	sr.Smoothed = smoothed.Result()
	return sr, nil
}
