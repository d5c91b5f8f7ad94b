package segmentation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ictal/internal/media/ffprobe"
)

// ErrNoDuration indicates ffprobe reported no usable duration.
var ErrNoDuration = errors.New("video duration unavailable")

// Media is the subset of probe output planning needs.
type Media struct {
	Path      string  `json:"path"`
	Duration  float64 `json:"duration_seconds"`
	FrameRate float64 `json:"frame_rate"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// Probe inspects path with ffprobe.
func Probe(ctx context.Context, binary, path string) (Media, error) {
	result, err := ffprobe.Inspect(ctx, binary, path)
	if err != nil {
		return Media{}, err
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return Media{}, fmt.Errorf("%w: %s", ErrNoDuration, path)
	}
	width, height := result.Dimensions()
	return Media{
		Path:      path,
		Duration:  duration,
		FrameRate: result.FrameRate(),
		Width:     width,
		Height:    height,
	}, nil
}
