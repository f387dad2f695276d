package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/lorcheck/internal/config"
	"github.com/nao1215/lorcheck/internal/database"
	"github.com/nao1215/lorcheck/internal/model"
	"github.com/spf13/cobra"
)

// Constants for trend direction.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// It compares stored runs of a target.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Compare the latest run with an earlier one",
		Long: `History compares the latest stored run of a target with an earlier run and shows:
- Regressions: checks that fail now but did not before
- Fixes: checks that failed before but do not now
- Markup changes: regions whose HTML digest changed between the runs

The target defaults to https://www.linux.org.ru/. Use 'lorcheck run' to
record runs.

Examples:
  # Compare the latest two runs
  lorcheck history

  # List the stored runs of a target
  lorcheck history --list https://www.linux.org.ru/

  # Compare the latest run with run 5
  lorcheck history --with-run-id 5

  # List every target in the database
  lorcheck history --list-targets`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the target")
	cmd.Flags().BoolP("list-targets", "L", false,
		"List all targets in the database")

	// Comparison target flag
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	target         string
	withRunID      int64
	jsonOutput     bool
	markdownOutput bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	// Validate before opening the database so a bad argument leaves no
	// lock behind.
	opts := historyOptions{target: config.DefaultTarget}
	if len(args) > 0 {
		opts.target = args[0]
	}
	if !listTargets {
		if err := config.ValidateTarget(opts.target); err != nil {
			return fmt.Errorf("%w: %s", err, opts.target)
		}
	}

	if opts.jsonOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if opts.jsonOutput && opts.markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if opts.withRunID, err = cmd.Flags().GetInt64("with-run-id"); err != nil {
		return err
	}
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listTargets:
		return listStoredTargets(ctx, db, out)
	case listHistory:
		return listRunHistory(ctx, db, opts.target, out)
	default:
		return runComparison(ctx, db, opts, out)
	}
}

// listStoredTargets lists every target that has runs in the database.
func listStoredTargets(ctx context.Context, db *database.RunDB, out io.Writer) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'lorcheck run' to check a page.")
		return nil
	}

	fmt.Fprintf(out, "Checked targets (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Fprintf(out, "  • %s\n", target)
	}
	fmt.Fprintln(out, "\nUse 'lorcheck history --list <url>' to see the runs of a target.")
	return nil
}

// listRunHistory lists every stored run of a target, newest first.
// Runs whose region markup differs from the run before are flagged.
func listRunHistory(ctx context.Context, db *database.RunDB, target string, out io.Writer) error {
	runs, err := db.GetRunHistoryWithMetadata(ctx, target)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No run history found for %s\n", target)
		fmt.Fprintln(out, "\nUse 'lorcheck run' to check this page.")
		return nil
	}

	changed, err := markupChanges(ctx, db, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", target, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %-6s  %-22s  %s\n", "ID", "Date", "Driver", "Result", "Summary", "Markup changed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 86))

	for _, meta := range runs {
		result := "PASS"
		if !meta.Passed {
			result = "FAIL"
		}
		regions := "-"
		if names := changed[meta.ID]; len(names) > 0 {
			regions = strings.Join(names, ", ")
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %-6s  %-22s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.Driver,
			result,
			formatSummary(meta.Summary),
			regions,
		)
	}

	fmt.Fprintln(out, "\nUse 'lorcheck history <url>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'lorcheck history --with-run-id <id> <url>' to compare with a specific run.")
	return nil
}

// markupChanges maps a run ID to the regions whose digest differs from the
// digest recorded by the previous run of the same region.
func markupChanges(ctx context.Context, db *database.RunDB, target string) (map[int64][]string, error) {
	changed := make(map[int64][]string)
	for _, region := range config.Regions {
		records, err := db.GetRegionDigests(ctx, target, region)
		if err != nil {
			return nil, err
		}
		// Records are newest first.
		for i := 0; i+1 < len(records); i++ {
			if records[i].Digest != records[i+1].Digest {
				changed[records[i].RunID] = append(changed[records[i].RunID], region)
			}
		}
	}
	return changed, nil
}

// formatSummary formats a run summary for the history table.
func formatSummary(s model.Summary) string {
	if s.Total == 0 {
		return "N/A"
	}
	parts := []string{fmt.Sprintf("%d/%d passed", s.Passed, s.Total)}
	if s.Failed > 0 {
		parts = append(parts, "F:"+strconv.Itoa(s.Failed))
	}
	if s.Skipped > 0 {
		parts = append(parts, "S:"+strconv.Itoa(s.Skipped))
	}
	return strings.Join(parts, " ")
}

// runComparison compares the latest run of a target with the previous run
// or with the run selected by opts.withRunID.
func runComparison(ctx context.Context, db *database.RunDB, opts historyOptions, out io.Writer) error {
	var current, previous *model.RunReport

	if opts.withRunID > 0 {
		var err error
		current, err = db.GetLatestRunReport(ctx, opts.target)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("no run history found for %s", opts.target)
		}

		previous, err = db.GetRunReportByID(ctx, opts.withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", opts.withRunID, err)
		}
		if previous == nil {
			return fmt.Errorf("run with ID %d not found", opts.withRunID)
		}
		if previous.Target != opts.target {
			return fmt.Errorf("run ID %d belongs to %s, not %s", opts.withRunID, previous.Target, opts.target)
		}
	} else {
		runs, err := db.GetRunHistory(ctx, opts.target)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no run history found for %s", opts.target)
		}
		if len(runs) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		current, previous = runs[0], runs[1]
	}

	comparison := compareRuns(previous, current)

	if opts.jsonOutput {
		return outputComparisonJSON(comparison, out)
	}
	if opts.markdownOutput {
		return outputComparisonMarkdown(comparison, out)
	}
	return outputComparisonText(comparison, out)
}

// ComparisonResult holds the result of comparing two runs.
type ComparisonResult struct {
	// Target is the checked page.
	Target string `json:"target"`

	// PreviousRun contains metadata about the earlier run.
	PreviousRun RunInfo `json:"previous_run"`

	// CurrentRun contains metadata about the latest run.
	CurrentRun RunInfo `json:"current_run"`

	// Regressions are checks that fail now and did not fail before.
	Regressions []CheckChange `json:"regressions,omitempty"`

	// Fixes are checks that failed before and do not fail now.
	Fixes []CheckChange `json:"fixes,omitempty"`

	// Added and Removed are checks present in only one of the runs.
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`

	// UnchangedCount is the number of checks with the same status in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// MarkupChanges lists the regions whose digest differs.
	MarkupChanges []RegionChange `json:"markup_changes,omitempty"`

	// Trend is "improved", "worsened", or "unchanged".
	Trend string `json:"trend"`
}

// RunInfo contains metadata about a run for comparison display.
type RunInfo struct {
	StartedAt time.Time     `json:"started_at"`
	Driver    string        `json:"driver"`
	Passed    bool          `json:"passed"`
	Summary   model.Summary `json:"summary"`
}

// CheckChange describes a check whose status differs between runs.
type CheckChange struct {
	// Check is the region-qualified name, such as "header/menu_structure".
	Check    string       `json:"check"`
	Previous model.Status `json:"previous"`
	Current  model.Status `json:"current"`

	// Failure and Message describe the failing side.
	Failure model.FailureKind `json:"failure,omitempty"`
	Message string            `json:"message,omitempty"`
}

// RegionChange describes a region whose markup digest changed.
type RegionChange struct {
	Region   string `json:"region"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// compareRuns compares two runs and generates a comparison result.
func compareRuns(previous, current *model.RunReport) *ComparisonResult {
	result := &ComparisonResult{
		Target:      current.Target,
		PreviousRun: newRunInfo(previous),
		CurrentRun:  newRunInfo(current),
	}

	prevChecks := make(map[string]model.CheckResult)
	for _, c := range previous.Checks() {
		prevChecks[c.Key()] = c
	}

	seen := make(map[string]bool)
	for _, cur := range current.Checks() {
		key := cur.Key()
		seen[key] = true

		prev, ok := prevChecks[key]
		switch {
		case !ok:
			result.Added = append(result.Added, key)
		case cur.Status == prev.Status:
			result.UnchangedCount++
		case cur.Status == model.StatusFailed:
			result.Regressions = append(result.Regressions, CheckChange{
				Check:    key,
				Previous: prev.Status,
				Current:  cur.Status,
				Failure:  cur.Failure,
				Message:  cur.Message,
			})
		case prev.Status == model.StatusFailed:
			result.Fixes = append(result.Fixes, CheckChange{
				Check:    key,
				Previous: prev.Status,
				Current:  cur.Status,
				Failure:  prev.Failure,
				Message:  prev.Message,
			})
		default:
			// passed <-> skipped, typically a driver switch
			result.UnchangedCount++
		}
	}

	for key := range prevChecks {
		if !seen[key] {
			result.Removed = append(result.Removed, key)
		}
	}
	slices.Sort(result.Removed)

	for _, cur := range current.Regions {
		prev, ok := previous.Region(cur.Name)
		if !ok || prev.Digest == "" || cur.Digest == "" || prev.Digest == cur.Digest {
			continue
		}
		result.MarkupChanges = append(result.MarkupChanges, RegionChange{
			Region:   cur.Name,
			Previous: prev.Digest,
			Current:  cur.Digest,
		})
	}

	result.Trend = calculateTrend(len(result.Regressions), len(result.Fixes))
	return result
}

// newRunInfo extracts comparison metadata from a report.
func newRunInfo(r *model.RunReport) RunInfo {
	return RunInfo{
		StartedAt: r.StartedAt,
		Driver:    r.Driver,
		Passed:    r.Passed(),
		Summary:   r.Summary,
	}
}

// calculateTrend derives the overall direction from regression and fix counts.
func calculateTrend(regressions, fixes int) string {
	switch {
	case regressions > fixes:
		return trendWorsened
	case fixes > regressions:
		return trendImproved
	default:
		return trendUnchanged
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult, out io.Writer) error {
	md := markdown.NewMarkdown(out)

	md.H1("Run Comparison: " + result.Target)
	md.PlainText("")
	md.PlainTextf("**Trend:** %s", formatTrend(result.Trend))
	md.PlainText("")

	prev, cur := result.PreviousRun, result.CurrentRun
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Date", prev.StartedAt.Format("2006-01-02 15:04"), cur.StartedAt.Format("2006-01-02 15:04"), "-"},
			{"Driver", prev.Driver, cur.Driver, "-"},
			{"Passed", strconv.Itoa(prev.Summary.Passed), strconv.Itoa(cur.Summary.Passed), formatDelta(cur.Summary.Passed - prev.Summary.Passed)},
			{"Failed", strconv.Itoa(prev.Summary.Failed), strconv.Itoa(cur.Summary.Failed), formatDelta(cur.Summary.Failed - prev.Summary.Failed)},
			{"Skipped", strconv.Itoa(prev.Summary.Skipped), strconv.Itoa(cur.Summary.Skipped), formatDelta(cur.Summary.Skipped - prev.Summary.Skipped)},
			{"**Total**", "**" + strconv.Itoa(prev.Summary.Total) + "**", "**" + strconv.Itoa(cur.Summary.Total) + "**", "**" + formatDelta(cur.Summary.Total-prev.Summary.Total) + "**"},
		},
	})
	md.PlainText("")

	if len(result.Regressions) > 0 {
		md.H2(fmt.Sprintf("Regressions (%d)", len(result.Regressions)))
		md.PlainText("")
		items := make([]string, len(result.Regressions))
		for i, c := range result.Regressions {
			items[i] = fmt.Sprintf("**`%s`** %s → %s (%s)", c.Check, c.Previous, c.Current, c.Failure)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(result.Fixes) > 0 {
		md.H2(fmt.Sprintf("Fixes (%d)", len(result.Fixes)))
		md.PlainText("")
		items := make([]string, len(result.Fixes))
		for i, c := range result.Fixes {
			items[i] = fmt.Sprintf("~~`%s`~~ %s → %s", c.Check, c.Previous, c.Current)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(result.MarkupChanges) > 0 {
		md.H2("Markup Changes")
		md.PlainText("")
		rows := make([][]string, len(result.MarkupChanges))
		for i, c := range result.MarkupChanges {
			rows[i] = []string{c.Region, "`" + shortDigest(c.Previous) + "`", "`" + shortDigest(c.Current) + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Region", "Previous", "Current"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d checks unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult, out io.Writer) error {
	fmt.Fprintf(out, "Run Comparison: %s\n", result.Target)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nTrend: %s\n", formatTrend(result.Trend))

	prev, cur := result.PreviousRun, result.CurrentRun
	fmt.Fprintf(out, "\nPrevious run: %s (%s)\n", prev.StartedAt.Format("2006-01-02 15:04:05"), prev.Driver)
	fmt.Fprintf(out, "Current run:  %s (%s)\n", cur.StartedAt.Format("2006-01-02 15:04:05"), cur.Driver)

	fmt.Fprintln(out, "\nChecks Summary:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Outcome", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	rows := []struct {
		label     string
		prev, cur int
	}{
		{"Passed", prev.Summary.Passed, cur.Summary.Passed},
		{"Failed", prev.Summary.Failed, cur.Summary.Failed},
		{"Skipped", prev.Summary.Skipped, cur.Summary.Skipped},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", r.label, r.prev, r.cur, formatDelta(r.cur-r.prev))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		prev.Summary.Total, cur.Summary.Total, formatDelta(cur.Summary.Total-prev.Summary.Total))

	if len(result.Regressions) > 0 {
		fmt.Fprintf(out, "\nRegressions (%d):\n", len(result.Regressions))
		for _, c := range result.Regressions {
			fmt.Fprintf(out, "  [+] %s: %s -> %s (%s)\n", c.Check, c.Previous, c.Current, c.Failure)
			if c.Message != "" {
				fmt.Fprintf(out, "      %s\n", firstLine(c.Message))
			}
		}
	}

	if len(result.Fixes) > 0 {
		fmt.Fprintf(out, "\nFixes (%d):\n", len(result.Fixes))
		for _, c := range result.Fixes {
			fmt.Fprintf(out, "  [-] %s: %s -> %s\n", c.Check, c.Previous, c.Current)
		}
	}

	if len(result.MarkupChanges) > 0 {
		fmt.Fprintf(out, "\nMarkup Changes (%d):\n", len(result.MarkupChanges))
		for _, c := range result.MarkupChanges {
			fmt.Fprintf(out, "  [~] %s: %s -> %s\n", c.Region, shortDigest(c.Previous), shortDigest(c.Current))
		}
	}

	if len(result.Added) > 0 {
		fmt.Fprintf(out, "\nNew checks: %s\n", strings.Join(result.Added, ", "))
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(out, "Removed checks: %s\n", strings.Join(result.Removed, ", "))
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d checks\n", result.UnchangedCount)
	}

	return nil
}

// formatTrend formats the trend direction for display.
func formatTrend(trend string) string {
	switch trend {
	case trendImproved:
		return "IMPROVED (fewer failing checks)"
	case trendWorsened:
		return "WORSENED (more failing checks)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// shortDigest returns the first 12 hex characters of a digest.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

// firstLine returns s up to its first newline.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
