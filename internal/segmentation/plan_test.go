package segmentation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPlanClips(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     []Window
	}{
		{
			name:     "overlapping with clamped tail",
			duration: 22,
			want: []Window{
				{Index: 0, Start: 0, End: 10},
				{Index: 1, Start: 5, End: 15},
				{Index: 2, Start: 10, End: 20},
				{Index: 3, Start: 15, End: 22},
				{Index: 4, Start: 20, End: 22},
			},
		},
		{
			name:     "shorter than one segment",
			duration: 3,
			want:     []Window{{Index: 0, Start: 0, End: 3}},
		},
		{
			name:     "exact multiple of step",
			duration: 10,
			want: []Window{
				{Index: 0, Start: 0, End: 10},
				{Index: 1, Start: 5, End: 10},
			},
		},
		{name: "empty recording", duration: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanClips(tt.duration, DefaultSegmentSeconds, DefaultStepSeconds)
			if err != nil {
				t.Fatalf("PlanClips: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PlanClips(%v) = %+v, want %+v", tt.duration, got, tt.want)
			}
		})
	}
}

func TestPlanClipsRejectsBadParameters(t *testing.T) {
	cases := []struct {
		duration, segment, step float64
	}{
		{duration: -1, segment: 10, step: 5},
		{duration: math.NaN(), segment: 10, step: 5},
		{duration: 10, segment: 0, step: 5},
		{duration: 10, segment: 10, step: -5},
		{duration: 10, segment: 10, step: math.Inf(1)},
	}
	for _, c := range cases {
		if _, err := PlanClips(c.duration, c.segment, c.step); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("PlanClips(%v, %v, %v) err = %v, want ErrInvalidPlan", c.duration, c.segment, c.step, err)
		}
	}
}

func TestWindowName(t *testing.T) {
	if got := (Window{Index: 0}).Name(); got != "segment_001" {
		t.Fatalf("Name = %q", got)
	}
	if got := (Window{Index: 41}).Name(); got != "segment_042" {
		t.Fatalf("Name = %q", got)
	}
}

func TestPlanFrames(t *testing.T) {
	batches, err := PlanFrames(12.3, DefaultFramesPerSecond, DefaultBatchSize)
	if err != nil {
		t.Fatalf("PlanFrames: %v", err)
	}
	// floor(12300 / 500) = 24 frames.
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	if batches[0].FirstFrame != 0 || batches[1].FirstFrame != 10 || batches[2].FirstFrame != 20 {
		t.Fatalf("unexpected first frames: %+v", batches)
	}
	if len(batches[2].TimestampsMS) != 4 {
		t.Fatalf("last batch size = %d, want 4", len(batches[2].TimestampsMS))
	}
	if got := batches[1].TimestampsMS[0]; got != 5000 {
		t.Fatalf("batch 2 first timestamp = %v, want 5000", got)
	}
	if got := batches[2].TimestampsMS[3]; got != 11500 {
		t.Fatalf("final timestamp = %v, want 11500", got)
	}
	if batches[2].Name() != "batch_3" {
		t.Fatalf("Name = %q", batches[2].Name())
	}
	want := []string{"00020.jpg", "00021.jpg", "00022.jpg", "00023.jpg"}
	if got := batches[2].FrameNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FrameNames = %v, want %v", got, want)
	}
}

func TestPlanFramesShortRecording(t *testing.T) {
	batches, err := PlanFrames(0.4, 2, 10)
	if err != nil {
		t.Fatalf("PlanFrames: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %+v", batches)
	}
}

func TestPlanFramesRejectsBadParameters(t *testing.T) {
	if _, err := PlanFrames(10, 0, 10); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("zero fps err = %v", err)
	}
	if _, err := PlanFrames(10, 2, 0); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("zero batch err = %v", err)
	}
}

func TestSegmentIndexWindow(t *testing.T) {
	w := SegmentIndexWindow(3, 5)
	if w.Start != 15 || w.End != 20 || w.Duration() != 5 {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := `#!/bin/sh
cat <<'JSON'
{"streams":[{"codec_type":"video","width":1280,"height":720,"avg_frame_rate":"25/1"}],"format":{"duration":"42.0"}}
JSON
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	media, err := Probe(context.Background(), script, "night.avi")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := Media{Path: "night.avi", Duration: 42, FrameRate: 25, Width: 1280, Height: 720}
	if media != want {
		t.Fatalf("Probe = %+v, want %+v", media, want)
	}
}

func TestProbeWithoutDuration(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho '{\"streams\":[],\"format\":{}}'\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := Probe(context.Background(), script, "broken.avi"); !errors.Is(err, ErrNoDuration) {
		t.Fatalf("Probe err = %v, want ErrNoDuration", err)
	}
}
