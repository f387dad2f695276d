package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/lorcheck/internal/config"
	"github.com/nao1215/lorcheck/internal/database"
	"github.com/nao1215/lorcheck/internal/log"
	"github.com/nao1215/lorcheck/internal/model"
	"github.com/nao1215/lorcheck/internal/pipeline"
	"github.com/nao1215/lorcheck/internal/report"
	"github.com/spf13/cobra"
)

// errChecksFailed is returned when the run finished with failed checks.
var errChecksFailed = errors.New("checks failed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Check the front page header, body and footer",
		Long: `Run opens the target page and checks its three regions:

- header (#hd): logo, main menu, register and login links
- body (#bd): news list, navigation buttons, aside banners, comment links
- footer (#ft): info texts and the scroll-to-top control

Each check either passes, fails (lookup or assertion) or is skipped. The run
exits with status 1 when any check fails. Results are saved to the history
database unless --no-save is given.

Examples:
  # Check www.linux.org.ru with headless Chrome
  lorcheck run

  # Check the served HTML without a browser
  lorcheck run --static

  # Only the header and footer, with a visible window
  lorcheck run --headed -r header -r footer

  # Check a mirror through a SOCKS5 proxy and write a Markdown report
  lorcheck run --static -x 127.0.0.1:1080 -m -o report.md https://mirror.example.org/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	// Session flags
	cmd.Flags().BoolP("static", "s", false,
		"Fetch the page over HTTP instead of driving Chrome (interactive checks are skipped)")
	cmd.Flags().Bool("headed", false,
		"Show the Chrome window")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable path")
	cmd.Flags().StringP("proxy", "x", "",
		"Proxy address (host:port); SOCKS5 in static mode")

	// Timing flags
	cmd.Flags().DurationP("implicit-wait", "w", config.DefaultImplicitWait,
		"How long an element lookup retries before failing")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page load timeout")
	cmd.Flags().Duration("scroll-timeout", config.DefaultScrollTimeout,
		"How long scroll-to-top may take to reach the top")

	cmd.Flags().StringSliceP("region", "r", nil,
		"Only check the given regions (header, body, footer); repeatable")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lorcheck in current or home directory, then $XDG_CONFIG_HOME/lorcheck/config.yaml)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed); a text summary still goes to stdout")
	cmd.Flags().Bool("no-color", false,
		"Disable colored output")
	cmd.Flags().Bool("no-save", false,
		"Do not save the run to the history database")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, getBoolFlag(cmd, "log-json"))
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runChecks(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist; otherwise a missing file just
	// means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	// Flags only override the file when given explicitly.
	if flags.Changed("headed") {
		headed, err := flags.GetBool("headed")
		if err != nil {
			return nil, err
		}
		cfg.Headless = !headed
	}
	if flags.Changed("chrome-path") {
		if cfg.ChromePath, err = flags.GetString("chrome-path"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("implicit-wait") {
		if cfg.ImplicitWait, err = flags.GetDuration("implicit-wait"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("scroll-timeout") {
		if cfg.ScrollTimeout, err = flags.GetDuration("scroll-timeout"); err != nil {
			return nil, err
		}
	}

	if cfg.Static, err = flags.GetBool("static"); err != nil {
		return nil, err
	}
	if cfg.Regions, err = flags.GetStringSlice("region"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.NoColor, err = flags.GetBool("no-color"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	if len(args) > 0 {
		cfg.Target = args[0]
	}

	return cfg, nil
}

// setupLogger creates the secure logger for the CLI.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runChecks runs every enabled region, writes the report and stores it.
func runChecks(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	runReport := pipeline.RunWithSession(ctx, cfg, logger)

	if err := outputReport(cfg, runReport, out); err != nil {
		logger.Error("report failed", "error", err)
	}

	// The run context may already be cancelled; the partial report is
	// still stored.
	if err := saveRunReport(context.WithoutCancel(ctx), db, runReport, logger); err != nil {
		logger.Error("failed to save run report", "error", err)
	}

	if runReport.Error != "" {
		return errors.New(runReport.Error)
	}
	if runReport.TimedOut {
		return fmt.Errorf("run interrupted: %w", context.Cause(ctx))
	}
	if runReport.Summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, runReport.Summary.Failed, runReport.Summary.Total)
	}
	return nil
}

// outputReport writes the report in the requested format to out. When
// cfg.ReportFile is set the report goes to that file instead, and out gets
// the plain text report.
func outputReport(cfg *config.Config, runReport *model.RunReport, out io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := formatWriter(cfg, out, !cfg.NoColor).Write(runReport)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	writer := report.NewMultiWriter(
		formatWriter(cfg, f, false),
		report.NewSimpleWriter(out, report.WithColor(!cfg.NoColor)),
	)
	_, err = writer.Write(runReport)
	return err
}

// formatWriter returns the report writer selected by cfg.
func formatWriter(cfg *config.Config, output io.Writer, colored bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(colored),
		)
	}
}

// saveRunReport saves the run report to the database.
// If db is nil, this function is a no-op.
func saveRunReport(ctx context.Context, db *database.RunDB, runReport *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveRunReport(ctx, runReport)
	if err != nil {
		return err
	}

	logger.Info("run report saved to database", "target", runReport.Target, "id", id)
	return nil
}
