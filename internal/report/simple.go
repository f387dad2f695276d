package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/nao1215/lorcheck/internal/model"
)

// SimpleWriter outputs human-readable text reports with one line per check.
type SimpleWriter struct {
	baseWriter

	// verbose adds check descriptions and durations.
	verbose bool

	// colored enables ANSI colors.
	colored bool

	passed  *color.Color
	failed  *color.Color
	skipped *color.Color
	heading *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables or disables colored output. The default follows
// whether the terminal supports colors.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colored = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		colored:    !color.NoColor,
		passed:     color.New(color.FgGreen),
		failed:     color.New(color.FgRed, color.Bold),
		skipped:    color.New(color.FgYellow),
		heading:    color.New(color.Bold),
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, c := range []*color.Color{w.passed, w.failed, w.skipped, w.heading} {
		if w.colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	for _, region := range report.Regions {
		w.writeRegion(&sb, region)
	}
	w.writeSummary(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint("                          LORCHECK REPORT"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:    %s\n", report.Target)
	fmt.Fprintf(sb, "Driver:    %s\n", report.Driver)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:  %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:    %s\n", w.colorStatus(report))
	sb.WriteString("\n")
}

// colorStatus colors the verdict.
func (w *SimpleWriter) colorStatus(report *model.RunReport) string {
	text := statusText(report)
	if report.Passed() {
		return w.passed.Sprint(text)
	}
	return w.failed.Sprint(text)
}

// writeRegion writes the checks of one region.
func (w *SimpleWriter) writeRegion(sb *strings.Builder, region model.RegionResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s (#%s)\n", w.heading.Sprint(strings.ToUpper(region.Name)), region.Root)
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, c := range region.Checks {
		fmt.Fprintf(sb, "  %s %s", w.symbol(c.Status), c.Name)
		if w.verbose {
			fmt.Fprintf(sb, " (%s)", c.Duration.Round(time.Millisecond))
		}
		sb.WriteString("\n")

		if w.verbose && c.Description != "" {
			fmt.Fprintf(sb, "      %s\n", c.Description)
		}
		if c.Message != "" && (c.Status == model.StatusFailed || w.verbose) {
			label := "reason"
			if c.Status == model.StatusFailed {
				label = c.Failure.String() + " failure"
			}
			fmt.Fprintf(sb, "      %s: %s\n", label, indent(c.Message, "        "))
		}
	}
	if w.verbose && region.Digest != "" {
		fmt.Fprintf(sb, "\n  markup digest: %s\n", region.Digest)
	}
	sb.WriteString("\n")
}

// symbol returns the colored status marker.
func (w *SimpleWriter) symbol(status model.Status) string {
	switch status {
	case model.StatusPassed:
		return w.passed.Sprint(status.Symbol())
	case model.StatusFailed:
		return w.failed.Sprint(status.Symbol())
	default:
		return w.skipped.Sprint(status.Symbol())
	}
}

// writeSummary writes the totals.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	s := report.Summary

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint("SUMMARY"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  PASSED:   %d\n", s.Passed)
	fmt.Fprintf(sb, "  FAILED:   %d (lookup: %d, assertion: %d)\n", s.Failed, s.LookupFailures, s.AssertionFailures)
	fmt.Fprintf(sb, "  SKIPPED:  %d\n", s.Skipped)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d checks\n", s.Total)
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by lorcheck\n")
	sb.WriteString("https://github.com/nao1215/lorcheck\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// indent prefixes every line after the first with prefix, so multi-line
// diffs stay under their check.
func indent(s, prefix string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+prefix)
}
