package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ictal/internal/config"
	"ictal/internal/dataset"
	"ictal/internal/sequence"
)

func testDataset() dataset.Dataset {
	return dataset.Dataset{
		Source: "preds.csv",
		Records: []dataset.Record{
			{
				VideoID: "VID_720",
				GT:      sequence.Binary{0, 0, 0, 1, 1, 1, 0, 0},
				Pred:    sequence.Binary{1, 0, 0, 1, 1, 1, 0, 1},
				Tags:    map[string]string{dataset.TagDeviceClass: "Phone 720p"},
			},
			{
				VideoID: "VID_NIGHT",
				GT:      sequence.Binary{0, 0, 1, 1, 0},
				Pred:    sequence.Binary{0, 1, 0, 1, 0},
				Tags:    map[string]string{dataset.TagIllumination: "Night-Vision"},
			},
			{
				VideoID: "VID_BAD",
				GT:      sequence.Binary{0, 4},
				Pred:    sequence.Binary{0, 1},
			},
		},
		Skipped: []dataset.Skipped{{Row: 9, VideoID: "VID_ROW", Reason: "bad cell"}},
	}
}

func TestRunComparesRawAndSmoothed(t *testing.T) {
	cfg := config.Default()
	cfg.Evaluation.Subsets = config.DefaultSubsets()
	runner := NewRunner(&cfg, nil)

	rep, err := runner.Run(context.Background(), testDataset())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if rep.RunID == "" || rep.Dataset != "preds.csv" || rep.MinDuration != 2 {
		t.Fatalf("unexpected report header %+v", rep)
	}
	if rep.Videos != 2 {
		t.Fatalf("Videos = %d, want 2", rep.Videos)
	}
	if len(rep.Skipped) != 2 || rep.Skipped[1].VideoID != "VID_BAD" {
		t.Fatalf("unexpected skipped %+v", rep.Skipped)
	}
	if len(rep.Subsets) != 3 {
		t.Fatalf("expected 3 subsets, got %d", len(rep.Subsets))
	}

	all := rep.Subsets[0]
	if all.Videos != 2 {
		t.Fatalf("all subset videos = %d", all.Videos)
	}
	// Raw: VID_720 TP3 FP2 TN3; VID_NIGHT TP1 FN1 FP1 TN2.
	if all.Raw.TP != 4 || all.Raw.FP != 3 || all.Raw.TN != 5 || all.Raw.FN != 1 {
		t.Fatalf("raw counts = %+v", all.Raw.Counts)
	}
	// Smoothed: VID_720 drops both spikes, VID_NIGHT drops both singletons.
	if all.Smoothed.TP != 3 || all.Smoothed.FP != 0 || all.Smoothed.TN != 8 || all.Smoothed.FN != 2 {
		t.Fatalf("smoothed counts = %+v", all.Smoothed.Counts)
	}
	if all.Removed != 4 {
		t.Fatalf("Removed = %d, want 4", all.Removed)
	}
	if all.Smoothed.Specificity != 100 || all.Smoothed.Recall != 60 {
		t.Fatalf("smoothed metrics = %+v", all.Smoothed)
	}

	if rep.Subsets[1].Videos != 1 || rep.Subsets[2].Videos != 1 {
		t.Fatalf("subset membership wrong: %+v", rep.Subsets)
	}
	night := rep.Subsets[2]
	if night.Smoothed.RecallDefined != true || night.Smoothed.Recall != 0 {
		t.Fatalf("night smoothed = %+v", night.Smoothed)
	}
}

func TestRunDoesNotMutateDataset(t *testing.T) {
	ds := testDataset()
	runner := &Runner{MinDuration: 3, Workers: 2}
	if _, err := runner.Run(context.Background(), ds); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if ds.Records[0].Smoothed != nil {
		t.Fatal("runner wrote into caller's records")
	}
	if !ds.Records[0].Pred.Equal(sequence.Binary{1, 0, 0, 1, 1, 1, 0, 1}) {
		t.Fatalf("pred mutated: %v", ds.Records[0].Pred)
	}
}

func TestRunEmptySubsetReportsZero(t *testing.T) {
	runner := &Runner{
		MinDuration: 2,
		Subsets:     []dataset.Subset{{Name: "Tablet", Tag: dataset.TagDeviceClass, Match: dataset.MatchEquals, Value: "tablet"}},
	}
	rep, err := runner.Run(context.Background(), testDataset())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	sr := rep.Subsets[0]
	if sr.Videos != 0 || sr.Raw.RecallDefined || sr.Raw.SpecificityDefined || sr.Raw.Recall != 0 {
		t.Fatalf("expected empty subset result, got %+v", sr)
	}
}

func TestRunManyRecordsConcurrently(t *testing.T) {
	ds := dataset.Dataset{}
	for i := 0; i < 200; i++ {
		ds.Records = append(ds.Records, dataset.Record{
			VideoID: fmt.Sprintf("v%03d", i),
			GT:      sequence.Binary{0, 1, 1, 0},
			Pred:    sequence.Binary{1, 1, 1, 0},
		})
	}
	runner := &Runner{MinDuration: 2, Workers: 8}
	rep, err := runner.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	got := rep.Subsets[0].Smoothed
	if got.TP != 400 || got.FP != 200 || got.TN != 200 || got.FN != 0 {
		t.Fatalf("pooled counts = %+v", got.Counts)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Runner{MinDuration: 2}).Run(ctx, testDataset())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunRecordsDuration(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	var logs bytes.Buffer
	runner := &Runner{
		MinDuration: 2,
		Logger:      slog.New(slog.NewJSONHandler(&logs, nil)),
		now: func() time.Time {
			calls++
			return base.Add(time.Duration(calls-1) * time.Second)
		},
	}
	rep, err := runner.Run(context.Background(), testDataset())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !rep.StartedAt.Equal(base) || rep.Duration != time.Second {
		t.Fatalf("timing = %v %v", rep.StartedAt, rep.Duration)
	}
	var complete string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `"msg":"evaluation complete"`) {
			complete = line
		}
	}
	if !strings.Contains(complete, `"elapsed":1000000000`) {
		t.Fatalf("completion log = %q, want elapsed of one second", complete)
	}
}
