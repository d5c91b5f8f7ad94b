package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ictal/internal/config"
	"ictal/internal/dataset"
	"ictal/internal/evaluation"
	"ictal/internal/logging"
	"ictal/internal/report"
	"ictal/internal/runstore"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var (
		minDuration int
		jsonOutput  bool
		save        bool
		subsetFlags []string
		symptom     string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [dataset.csv]",
		Short: "Smooth predictions and report specificity and recall per subset",
		Long: `Load a prediction table (VideoID, GT_Segments, Pred_Segments and optional
DeviceClass/Illumination columns), remove short positive spikes from every
prediction sequence, and compare raw and smoothed metrics for each subset.

The dataset defaults to dataset.path in the configuration, then ICTAL_DATASET.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			source := cfg.Dataset.Path
			if len(args) == 1 {
				source = args[0]
			}
			if strings.TrimSpace(source) == "" {
				return errors.New("no dataset given: pass a path, set dataset.path, or export ICTAL_DATASET")
			}
			path, err := cfg.ResolveDataPath(source)
			if err != nil {
				return fmt.Errorf("resolve dataset path: %w", err)
			}

			runner := evaluation.NewRunner(cfg, logger)
			if cmd.Flags().Changed("min-duration") {
				runner.MinDuration = minDuration
			}
			if len(subsetFlags) > 0 {
				subsets, err := parseSubsetFlags(subsetFlags)
				if err != nil {
					return err
				}
				runner.Subsets = subsets
			}

			ds, err := dataset.LoadFile(cmd.Context(), path, dataset.LoadOptions{Logger: logger})
			if err != nil {
				return err
			}
			rep, err := runner.Run(cmd.Context(), ds)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}

			if save || (cfg.Evaluation.Save && !cmd.Flags().Changed("save")) {
				if err := ctx.withStore(func(store *runstore.Store) error {
					return store.Save(cmd.Context(), rep)
				}); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
				logger.Info("run saved", logging.String(logging.FieldRunID, rep.RunID))
			}

			if jsonOutput {
				return writeJSON(cmd, rep)
			}
			return report.WriteTable(cmd.OutOrStdout(), rep, report.Options{Symptom: symptom})
		},
	}

	cmd.Flags().IntVar(&minDuration, "min-duration", 0, "Shortest run of positive segments to keep (overrides filter.min_duration; <= 0 disables)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to the run store")
	cmd.Flags().StringArrayVar(&subsetFlags, "subset", nil, "Subset as name=tag:value (repeatable; replaces configured subsets)")
	cmd.Flags().StringVar(&symptom, "symptom", "", "Symptom name for the report title")
	return cmd
}

// parseSubsetFlags reads "name=tag:value" selectors. A bare name selects
// every record.
func parseSubsetFlags(values []string) ([]dataset.Subset, error) {
	subsets := make([]dataset.Subset, 0, len(values))
	for _, raw := range values {
		name, selector, hasSelector := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("subset %q: missing name", raw)
		}
		subset := dataset.Subset{Name: name}
		if hasSelector {
			tag, value, ok := strings.Cut(selector, ":")
			tag = strings.ToLower(strings.TrimSpace(tag))
			value = strings.TrimSpace(value)
			if !ok || value == "" {
				return nil, fmt.Errorf("subset %q: expected name=tag:value", raw)
			}
			if tag != dataset.TagDeviceClass && tag != dataset.TagIllumination {
				return nil, fmt.Errorf("subset %q: unknown tag %q", raw, tag)
			}
			subset.Tag = tag
			subset.Match = config.MatchContains
			subset.Value = value
			subset.IgnoreCase = true
		}
		subsets = append(subsets, subset)
	}
	return subsets, nil
}
