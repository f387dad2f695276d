package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/config"
	"github.com/nao1215/lorcheck/internal/model"
)

// OpenSession starts the session selected by cfg: a static session when
// cfg.Static is set, Chrome otherwise.
func OpenSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (browser.Session, error) {
	if cfg.Static {
		opts := []browser.FetcherOption{
			browser.WithFetchTimeout(cfg.Timeout),
			browser.WithFetchUserAgent(config.DefaultUserAgent),
		}
		if cfg.UserAgent != "" {
			opts = append(opts, browser.WithFetchUserAgent(cfg.UserAgent))
		}
		if cfg.ProxyAddress != "" {
			opts = append(opts, browser.WithSOCKS5Proxy(cfg.ProxyAddress))
		}
		fetcher, err := browser.NewFetcher(opts...)
		if err != nil {
			return nil, err
		}
		return browser.NewStaticSession(fetcher), nil
	}

	opts := []browser.ChromeOption{
		browser.WithHeadless(cfg.Headless),
		browser.WithWindowSize(cfg.WindowWidth, cfg.WindowHeight),
		browser.WithImplicitWait(cfg.ImplicitWait),
		browser.WithActionTimeout(cfg.Timeout),
		browser.WithLogger(logger),
	}
	if cfg.ChromePath != "" {
		opts = append(opts, browser.WithExecPath(cfg.ChromePath))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, browser.WithProxy(cfg.ProxyAddress))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, browser.WithUserAgent(cfg.UserAgent))
	}
	return browser.Launch(ctx, opts...)
}

// Run executes every enabled region against session and returns the
// finalized report. The session is not closed.
func Run(ctx context.Context, cfg *config.Config, session browser.Session, logger *slog.Logger) *model.RunReport {
	if logger == nil {
		logger = slog.Default()
	}
	report := model.NewRunReport(cfg.Target, session.Name())

	p := New(WithLogger(logger), WithContinueOnError(true))
	p.AddSteps(RegionSteps(cfg, NewEnv(cfg, session.Page()), logger)...)

	logger.Info("starting run",
		"target", cfg.Target,
		"driver", session.Name(),
		"steps", p.StepCount(),
		"regions", p.StepNames(),
	)

	if err := p.Execute(ctx, report); err != nil {
		logger.Warn("run interrupted", "error", err)
	}

	report.Finalize()
	return report
}

// openSession is replaced in tests.
var openSession = OpenSession

// RunWithSession opens a session, runs the checks and closes the session.
// A session that cannot be opened is recorded as the report error.
func RunWithSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) *model.RunReport {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := openSession(ctx, cfg, logger)
	if err != nil {
		driver := "chrome"
		if cfg.Static {
			driver = "static"
		}
		report := model.NewRunReport(cfg.Target, driver)
		report.Error = fmt.Sprintf("failed to open browser session: %v", err)
		report.Finalize()
		return report
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("failed to close session", "error", cerr)
		}
	}()

	return Run(ctx, cfg, session, logger)
}
