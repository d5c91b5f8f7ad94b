package segmentation

import (
	"errors"
	"fmt"
	"math"
)

// Planning defaults.
const (
	DefaultSegmentSeconds  = 10.0
	DefaultStepSeconds     = 5.0
	DefaultFramesPerSecond = 2.0
	DefaultBatchSize       = 10
)

// ErrInvalidPlan reports a non-positive or non-finite planning parameter.
var ErrInvalidPlan = errors.New("invalid segmentation parameters")

// Window is a time range in seconds, End exclusive.
type Window struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Name returns the clip file stem used by the segmenter.
func (w Window) Name() string {
	return fmt.Sprintf("segment_%03d", w.Index+1)
}

// FrameBatch is a group of sampled frame timestamps. FirstFrame is the global
// number of the batch's first frame.
type FrameBatch struct {
	Index        int       `json:"index"`
	TimestampsMS []float64 `json:"timestamps_ms"`
	FirstFrame   int       `json:"first_frame"`
}

// Name returns the batch directory name.
func (b FrameBatch) Name() string {
	return fmt.Sprintf("batch_%d", b.Index+1)
}

// FrameNames lists the image file names for the batch.
func (b FrameBatch) FrameNames() []string {
	names := make([]string, len(b.TimestampsMS))
	for i := range b.TimestampsMS {
		names[i] = fmt.Sprintf("%05d.jpg", b.FirstFrame+i)
	}
	return names
}

// PlanClips returns overlapping windows of segmentSeconds starting every
// stepSeconds while the start lies inside the recording. The final windows
// are clamped to duration.
func PlanClips(duration, segmentSeconds, stepSeconds float64) ([]Window, error) {
	if err := checkDuration(duration); err != nil {
		return nil, err
	}
	if !positive(segmentSeconds) {
		return nil, fmt.Errorf("%w: segment length %v", ErrInvalidPlan, segmentSeconds)
	}
	if !positive(stepSeconds) {
		return nil, fmt.Errorf("%w: step %v", ErrInvalidPlan, stepSeconds)
	}

	var windows []Window
	for i := 0; ; i++ {
		start := float64(i) * stepSeconds
		if start >= duration {
			break
		}
		windows = append(windows, Window{
			Index: i,
			Start: start,
			End:   math.Min(start+segmentSeconds, duration),
		})
	}
	return windows, nil
}

// PlanFrames samples framesPerSecond timestamps across the recording and
// groups them into batches of batchSize.
func PlanFrames(duration, framesPerSecond float64, batchSize int) ([]FrameBatch, error) {
	if err := checkDuration(duration); err != nil {
		return nil, err
	}
	if !positive(framesPerSecond) {
		return nil, fmt.Errorf("%w: frames per second %v", ErrInvalidPlan, framesPerSecond)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidPlan, batchSize)
	}

	interval := 1000 / framesPerSecond
	count := int(math.Floor(duration * 1000 / interval))

	var batches []FrameBatch
	for first := 0; first < count; first += batchSize {
		n := min(batchSize, count-first)
		ts := make([]float64, n)
		for j := range ts {
			ts[j] = float64(first+j) * interval
		}
		batches = append(batches, FrameBatch{Index: len(batches), TimestampsMS: ts, FirstFrame: first})
	}
	return batches, nil
}

// SegmentIndexWindow returns the time range covered by element i of a
// prediction sequence whose segments last segmentSeconds.
func SegmentIndexWindow(i int, segmentSeconds float64) Window {
	return Window{
		Index: i,
		Start: float64(i) * segmentSeconds,
		End:   float64(i+1) * segmentSeconds,
	}
}

func checkDuration(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidPlan, d)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
