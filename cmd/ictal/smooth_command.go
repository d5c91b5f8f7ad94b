package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ictal/internal/segmentation"
	"ictal/internal/sequence"
	"ictal/internal/smoothing"
)

type removedSpan struct {
	StartIndex   int     `json:"start_index"`
	EndIndex     int     `json:"end_index"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// removedSpans maps zeroed runs onto the time axis of fixed-length segments.
func removedSpans(before, after sequence.Binary, segmentSeconds float64) []removedSpan {
	spans := []removedSpan{}
	for _, run := range smoothing.RemovedRuns(before, after) {
		spans = append(spans, removedSpan{
			StartIndex:   run.Start,
			EndIndex:     run.End,
			StartSeconds: segmentation.SegmentIndexWindow(run.Start, segmentSeconds).Start,
			EndSeconds:   segmentation.SegmentIndexWindow(run.End-1, segmentSeconds).End,
		})
	}
	return spans
}

func newSmoothCommand(ctx *commandContext) *cobra.Command {
	var minDuration int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "smooth <sequence>",
		Short: "Remove short positive spikes from one prediction sequence",
		Example: `  ictal smooth "[0, 1, 0, 1, 1, 1, 0]"
  ictal smooth 0 1 1 0 1 --min-duration 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			preds, err := sequence.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			d := cfg.Filter.MinDuration
			if cmd.Flags().Changed("min-duration") {
				d = minDuration
			}
			smoothed, err := smoothing.RemoveShortSpikes(preds, d)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					MinDuration    int             `json:"min_duration"`
					Input          sequence.Binary `json:"input"`
					Smoothed       sequence.Binary `json:"smoothed"`
					Removed        int             `json:"removed"`
					PositivesIn    int             `json:"positives_before"`
					PositivesOut   int             `json:"positives_after"`
					SegmentSeconds int             `json:"segment_seconds"`
					RemovedSpans   []removedSpan   `json:"removed_spans"`
				}{
					MinDuration:    d,
					Input:          preds,
					Smoothed:       smoothed,
					Removed:        smoothing.Removed(preds, smoothed),
					PositivesIn:    preds.Ones(),
					PositivesOut:   smoothed.Ones(),
					SegmentSeconds: cfg.Segmentation.SequenceSegmentSeconds,
					RemovedSpans:   removedSpans(preds, smoothed, float64(cfg.Segmentation.SequenceSegmentSeconds)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), smoothed.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&minDuration, "min-duration", "d", smoothing.DefaultMinDuration, "Shortest run of positive segments to keep")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
