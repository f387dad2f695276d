package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/lorcheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	for _, region := range report.Regions {
		w.writeRegion(md, region)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("lorcheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Driver", report.Driver},
			{"Run Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text with an indicator.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	switch {
	case report.TimedOut:
		return "⚠️ Interrupted (partial results)"
	case report.Error != "":
		return "❌ Error - " + report.Error
	case report.Summary.Failed > 0:
		return "❌ Failed"
	default:
		return "✅ Passed"
	}
}

// writeSummary writes the totals, a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ Passed", strconv.Itoa(s.Passed)},
			{"❌ Failed", strconv.Itoa(s.Failed)},
			{"↳ Lookup failures", strconv.Itoa(s.LookupFailures)},
			{"↳ Assertion failures", strconv.Itoa(s.AssertionFailures)},
			{"⏭️ Skipped", strconv.Itoa(s.Skipped)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of check outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Check Outcomes"),
		piechart.WithShowData(true),
	)

	if s.Passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(s.Passed))
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed))
	}
	if s.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(s.Skipped))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	s := report.Summary
	switch {
	case report.Error != "":
		md.Cautionf("The run could not complete: %s", report.Error)
	case report.TimedOut:
		md.Warningf("The run was interrupted after %d region(s). Regions that did not run are missing from this report.", len(report.Regions))
	case s.LookupFailures > 0:
		md.Cautionf("%d check(s) could not find an expected element. The page layout may have changed.", s.LookupFailures)
	case s.AssertionFailures > 0:
		md.Warningf("%d check(s) found content that does not match the expectations.", s.AssertionFailures)
	case s.Skipped > 0:
		md.Note("All executed checks passed. Some checks were skipped by this driver.")
	default:
		md.Tip("All checks passed.")
	}
	md.PlainText("")
}

// writeRegion writes the check table of one region.
func (w *MarkdownWriter) writeRegion(md *markdown.Markdown, region model.RegionResult) {
	md.H2(regionTitle(region.Name) + " (`#" + region.Root + "`)")
	md.PlainText("")

	rows := make([][]string, len(region.Checks))
	for i, c := range region.Checks {
		kind := "-"
		if c.Status == model.StatusFailed {
			kind = c.Failure.String()
		}
		rows[i] = []string{
			c.Status.Symbol(),
			"`" + c.Name + "`",
			c.Description,
			kind,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"", "Check", "Description", "Failure"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, c := range region.Checks {
		if c.Status == model.StatusFailed && c.Message != "" {
			md.Details(c.Name, "```\n"+strings.TrimRight(c.Message, "\n")+"\n```")
		}
	}
	if region.Digest != "" {
		md.PlainTextf("Markup digest: `%s`", truncateString(region.Digest, 16))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [lorcheck](https://github.com/nao1215/lorcheck)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
