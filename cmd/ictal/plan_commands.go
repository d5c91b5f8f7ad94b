package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ictal/internal/config"
	"ictal/internal/segmentation"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute clip windows and frame batches for a recording",
	}
	planCmd.AddCommand(newPlanClipsCommand(ctx))
	planCmd.AddCommand(newPlanFramesCommand(ctx))
	return planCmd
}

type planInput struct {
	duration float64
	json     bool
}

func (p *planInput) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.duration, "duration", 0, "Recording length in seconds (skips ffprobe)")
	cmd.Flags().BoolVar(&p.json, "json", false, "Emit JSON")
}

// resolve returns the recording duration from --duration or by probing the
// video argument.
func (p *planInput) resolve(cmd *cobra.Command, cfg *config.Config, args []string) (float64, error) {
	if cmd.Flags().Changed("duration") {
		if len(args) > 0 {
			return 0, errors.New("pass either a video or --duration, not both")
		}
		return p.duration, nil
	}
	if len(args) == 0 {
		return 0, errors.New("a video path or --duration is required")
	}
	path, err := cfg.ResolveDataPath(args[0])
	if err != nil {
		return 0, err
	}
	media, err := segmentation.Probe(cmd.Context(), cfg.Segmentation.FFprobeBinary, path)
	if err != nil {
		return 0, err
	}
	return media.Duration, nil
}

func newPlanClipsCommand(ctx *commandContext) *cobra.Command {
	var input planInput
	var segment, step float64

	cmd := &cobra.Command{
		Use:   "clips [video]",
		Short: "List overlapping clip windows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			duration, err := input.resolve(cmd, cfg, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("segment") {
				segment = cfg.Segmentation.SegmentSeconds
			}
			if !cmd.Flags().Changed("step") {
				step = cfg.Segmentation.StepSeconds
			}
			windows, err := segmentation.PlanClips(duration, segment, step)
			if err != nil {
				return err
			}
			if input.json {
				if windows == nil {
					windows = []segmentation.Window{}
				}
				return writeJSON(cmd, windows)
			}
			rows := make([][]string, 0, len(windows))
			for _, w := range windows {
				rows = append(rows, []string{w.Name(), formatSeconds(w.Start), formatSeconds(w.End), formatSeconds(w.Duration())})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Clip", "Start", "End", "Length"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "%d clips over %ss\n", len(windows), formatSeconds(duration))
			return nil
		},
	}
	input.bind(cmd)
	cmd.Flags().Float64Var(&segment, "segment", 0, "Clip length in seconds (default segmentation.segment_seconds)")
	cmd.Flags().Float64Var(&step, "step", 0, "Seconds between clip starts (default segmentation.step_seconds)")
	return cmd
}

func newPlanFramesCommand(ctx *commandContext) *cobra.Command {
	var input planInput
	var fps float64
	var batchSize int

	cmd := &cobra.Command{
		Use:   "frames [video]",
		Short: "List sampled frame batches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			duration, err := input.resolve(cmd, cfg, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fps") {
				fps = cfg.Segmentation.FramesPerSecond
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Segmentation.BatchSize
			}
			batches, err := segmentation.PlanFrames(duration, fps, batchSize)
			if err != nil {
				return err
			}
			if input.json {
				if batches == nil {
					batches = []segmentation.FrameBatch{}
				}
				return writeJSON(cmd, batches)
			}
			rows := make([][]string, 0, len(batches))
			frames := 0
			for _, b := range batches {
				n := len(b.TimestampsMS)
				frames += n
				rows = append(rows, []string{
					b.Name(),
					strconv.Itoa(n),
					formatSeconds(b.TimestampsMS[0] / 1000),
					formatSeconds(b.TimestampsMS[n-1] / 1000),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Batch", "Frames", "First", "Last"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "%d frames in %d batches\n", frames, len(batches))
			return nil
		},
	}
	input.bind(cmd)
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frames sampled per second (default segmentation.frames_per_second)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Frames per batch (default segmentation.batch_size)")
	return cmd
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
