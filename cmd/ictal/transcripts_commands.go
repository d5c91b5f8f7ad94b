package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"ictal/internal/logging"
	"ictal/internal/transcript"
)

func newTranscriptsCommand(ctx *commandContext) *cobra.Command {
	transcriptsCmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Work with inference transcripts",
	}
	transcriptsCmd.AddCommand(newTranscriptsConvertCommand(ctx))
	return transcriptsCmd
}

func newTranscriptsConvertCommand(ctx *commandContext) *cobra.Command {
	var output string
	var symptom string

	cmd := &cobra.Command{
		Use:   "convert <dir>",
		Short: "Convert a directory of per-video transcripts into a prediction table",
		Long: `Read every <VideoID>.txt transcript in dir and write one CSV row per video
with the decide-turn verdicts as Pred_Segments. GT_Segments is left empty for
annotation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			dir, err := cfg.ResolveDataPath(args[0])
			if err != nil {
				return err
			}

			name := strings.ToLower(strings.TrimSpace(symptom))
			if name == "" {
				name = strings.ToLower(filepath.Base(dir))
			}
			if !slices.Contains(cfg.Transcripts.Symptoms, name) {
				logging.WarnWithContext(logger, "symptom not in configured list", "unknown_symptom",
					logging.String("symptom", name),
					logging.String(logging.FieldErrorHint, "pass --symptom or add it to transcripts.symptoms"),
				)
			}

			rows, err := transcript.ConvertDir(cmd.Context(), dir, transcript.ConvertOptions{
				Symptom: name,
				Workers: cfg.Evaluation.Workers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			target := strings.TrimSpace(output)
			if target == "" || target == "-" {
				return transcript.WriteCSV(cmd.OutOrStdout(), rows)
			}
			if err := writeCSVFile(target, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d videos to %s\n", len(rows), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV destination (default stdout)")
	cmd.Flags().StringVar(&symptom, "symptom", "", "Symptom label (default: directory name)")
	return cmd
}

// writeCSVFile writes rows to path, reporting the close error as well.
func writeCSVFile(path string, rows []transcript.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := transcript.WriteCSV(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
