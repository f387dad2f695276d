package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/check"
	"github.com/nao1215/lorcheck/internal/config"
	"github.com/nao1215/lorcheck/internal/model"
)

// Env is what every region step shares: the page and the run settings.
type Env struct {
	// Page is the session page all regions use.
	Page browser.Page

	// Target is the URL loaded before each region.
	Target string

	// SiteRoot is the URL the logo must link to.
	SiteRoot string

	// Expect is the expectation set.
	Expect config.Expectations

	// ScrollTimeout and PollInterval drive the scroll-to-top wait.
	ScrollTimeout time.Duration
	PollInterval  time.Duration
}

// NewEnv builds an Env from the configuration.
func NewEnv(cfg *config.Config, page browser.Page) *Env {
	return &Env{
		Page:          page,
		Target:        cfg.Target,
		SiteRoot:      cfg.SiteRoot(),
		Expect:        cfg.Expect,
		ScrollTimeout: cfg.ScrollTimeout,
		PollInterval:  cfg.PollInterval,
	}
}

// RegionStep runs the checks of one page region.
type RegionStep struct {
	region check.Region
	env    *Env
	logger *slog.Logger
}

// RegionStepOption configures a RegionStep.
type RegionStepOption func(*RegionStep)

// WithStepLogger sets a custom logger for the region step.
func WithStepLogger(logger *slog.Logger) RegionStepOption {
	return func(s *RegionStep) {
		s.logger = logger
	}
}

// NewRegionStep creates a step for region.
func NewRegionStep(region check.Region, env *Env, opts ...RegionStepOption) *RegionStep {
	s := &RegionStep{
		region: region,
		env:    env,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Name returns the region name.
func (s *RegionStep) Name() string {
	return s.region.Name
}

// Do loads the target, resolves the region root and runs every check.
//
// When the page cannot be loaded every check is recorded as a lookup
// failure and the navigation error is returned. When the root cannot be
// resolved every check is recorded as a lookup failure and Do returns nil.
func (s *RegionStep) Do(ctx context.Context, report *model.RunReport) error {
	start := time.Now()
	result := model.RegionResult{
		Name:   s.region.Name,
		Root:   s.region.RootID,
		Checks: make([]model.CheckResult, 0, len(s.region.Checks)),
	}
	defer func() {
		if ctx.Err() != nil && len(result.Checks) == 0 {
			return
		}
		result.Duration = time.Since(start)
		report.AddRegion(result)
	}()

	if err := s.env.Page.Navigate(ctx, s.env.Target); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.failAll(&result, err)
		return fmt.Errorf("region %s: %w", s.region.Name, err)
	}

	root, err := s.env.Page.Find(ctx, s.region.Root())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("region root not found",
			"region", s.region.Name,
			"root", s.region.RootID,
			"error", err,
		)
		s.failAll(&result, &check.LookupError{Selector: s.region.Root(), Err: err})
		return nil
	}

	result.Digest = s.digest(ctx, root)

	scope := &check.Scope{
		Page:          s.env.Page,
		Root:          root,
		SiteRoot:      s.env.SiteRoot,
		Expect:        s.env.Expect,
		ScrollTimeout: s.env.ScrollTimeout,
		PollInterval:  s.env.PollInterval,
	}

	for _, c := range s.region.Checks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result.Checks = append(result.Checks, s.runCheck(ctx, c, scope))
	}

	return nil
}

// runCheck runs one check and converts its outcome into a result.
func (s *RegionStep) runCheck(ctx context.Context, c check.Check, scope *check.Scope) model.CheckResult {
	start := time.Now()
	err := c.Run(ctx, scope)
	status, kind := check.Classify(err)

	cr := model.CheckResult{
		Region:      s.region.Name,
		Name:        c.Name,
		Description: c.Description,
		Status:      status,
		Failure:     kind,
		Duration:    time.Since(start),
	}
	if err != nil {
		cr.Message = err.Error()
	}

	switch status {
	case model.StatusFailed:
		s.logger.Info("check failed",
			"region", s.region.Name,
			"check", c.Name,
			"kind", kind.String(),
			"error", err,
		)
	case model.StatusSkipped:
		s.logger.Debug("check skipped",
			"region", s.region.Name,
			"check", c.Name,
			"reason", err,
		)
	default:
		s.logger.Debug("check passed",
			"region", s.region.Name,
			"check", c.Name,
			"duration", cr.Duration,
		)
	}

	return cr
}

// failAll records every check of the region as a lookup failure caused by err.
func (s *RegionStep) failAll(result *model.RegionResult, err error) {
	for _, c := range s.region.Checks {
		result.Checks = append(result.Checks, model.CheckResult{
			Region:      s.region.Name,
			Name:        c.Name,
			Description: c.Description,
			Status:      model.StatusFailed,
			Failure:     model.FailureLookup,
			Message:     err.Error(),
		})
	}
}

// digest returns the hex SHA3-256 of the root markup, or "" if it cannot
// be read.
func (s *RegionStep) digest(ctx context.Context, root browser.Element) string {
	html, err := root.OuterHTML(ctx)
	if err != nil {
		s.logger.Debug("failed to read region markup",
			"region", s.region.Name,
			"error", err,
		)
		return ""
	}
	return Digest(html)
}

// Digest returns the hex SHA3-256 of markup.
func Digest(markup string) string {
	sum := sha3.Sum256([]byte(markup))
	return hex.EncodeToString(sum[:])
}

// RegionSteps returns one step per region enabled in cfg, in catalogue order.
func RegionSteps(cfg *config.Config, env *Env, logger *slog.Logger) []Step {
	if logger == nil {
		logger = slog.Default()
	}

	var steps []Step
	for _, name := range config.Regions {
		if !cfg.RegionEnabled(name) {
			continue
		}
		region, ok := check.Lookup(name)
		if !ok {
			logger.Warn("no checks registered for region", "region", name)
			continue
		}
		steps = append(steps, NewRegionStep(region, env, WithStepLogger(logger)))
	}
	return steps
}
