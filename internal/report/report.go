package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ictal/internal/evaluation"
	"ictal/internal/metrics"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// Options controls table rendering.
type Options struct {
	// Colorize forces ANSI color on or off. Nil means auto-detect.
	Colorize *bool
	// Symptom labels the report title when set.
	Symptom string
}

// WriteTable renders rep as a table followed by per-subset deltas.
func WriteTable(w io.Writer, rep evaluation.Report, opts Options) error {
	colorize := ShouldColorize(w)
	if opts.Colorize != nil {
		colorize = *opts.Colorize
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title(rep, opts.Symptom))
	tw.AppendHeader(table.Row{"Subset", "N", "Variant", "TP", "FP", "TN", "FN", "Specificity", "Recall"})
	for _, sr := range rep.Subsets {
		tw.AppendRow(resultRow(sr, evaluation.VariantRaw, sr.Raw))
		tw.AppendRow(resultRow(sr, evaluation.VariantSmoothed, sr.Smoothed))
		tw.AppendSeparator()
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})

	var sb strings.Builder
	sb.WriteString(tw.Render())
	sb.WriteByte('\n')
	for _, sr := range rep.Subsets {
		if sr.Videos == 0 {
			fmt.Fprintf(&sb, "%s: no videos\n", sr.Name())
			continue
		}
		fmt.Fprintf(&sb, "%s: specificity %s, recall %s, %d segments zeroed\n",
			sr.Name(),
			delta(sr.Raw.Specificity, sr.Smoothed.Specificity, sr.Raw.SpecificityDefined && sr.Smoothed.SpecificityDefined, colorize),
			delta(sr.Raw.Recall, sr.Smoothed.Recall, sr.Raw.RecallDefined && sr.Smoothed.RecallDefined, colorize),
			sr.Removed,
		)
	}
	if n := len(rep.Skipped); n > 0 {
		fmt.Fprintf(&sb, "%d record(s) skipped:\n", n)
		for _, skip := range rep.Skipped {
			label := skip.VideoID
			if label == "" {
				label = "(no id)"
			}
			if skip.Row > 0 {
				label = fmt.Sprintf("%s row %d", label, skip.Row)
			}
			fmt.Fprintf(&sb, "  - %s: %s\n", label, skip.Reason)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON encodes rep as indented JSON.
func WriteJSON(w io.Writer, rep evaluation.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DisplayName turns identifiers like "manual_automatisms" into "Manual Automatisms".
func DisplayName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(name)
}

// FormatPercent renders a metric, or "n/a" when its denominator was zero.
func FormatPercent(value float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return strconv.FormatFloat(value, 'f', 2, 64) + "%"
}

func resultRow(sr evaluation.SubsetReport, variant string, res metrics.Result) table.Row {
	return table.Row{
		sr.Name(),
		sr.Videos,
		variant,
		res.TP,
		res.FP,
		res.TN,
		res.FN,
		FormatPercent(res.Specificity, res.SpecificityDefined),
		FormatPercent(res.Recall, res.RecallDefined),
	}
}

func title(rep evaluation.Report, symptom string) string {
	parts := []string{"Temporal filter evaluation"}
	if symptom != "" {
		parts = append(parts, DisplayName(symptom))
	}
	parts = append(parts, fmt.Sprintf("min duration %d", rep.MinDuration))
	return strings.Join(parts, " · ")
}

func delta(before, after float64, defined, colorize bool) string {
	if !defined {
		return "n/a"
	}
	diff := after - before
	s := fmt.Sprintf("%.2f%% → %.2f%% (%+.2f)", before, after, diff)
	if !colorize || diff == 0 {
		return s
	}
	if diff > 0 {
		return ansiGreen + s + ansiReset
	}
	return ansiRed + s + ansiReset
}
