package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Default Chrome session settings.
const (
	defaultImplicitWait = 1 * time.Second
	defaultActionWait   = 30 * time.Second
	defaultWindowWidth  = 1280
	defaultWindowHeight = 720
)

// ChromeSession drives one Chrome process through chromedp.
type ChromeSession struct {
	// ctx is the chromedp browser context; every action runs under it.
	ctx context.Context

	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	page   *chromePage
	logger *slog.Logger
}

// chromeOptions collects the ChromeOption values.
type chromeOptions struct {
	headless     bool
	execPath     string
	proxy        string
	userAgent    string
	width        int
	height       int
	implicitWait time.Duration
	actionWait   time.Duration
	logger       *slog.Logger
}

// ChromeOption configures Launch.
type ChromeOption func(*chromeOptions)

// WithHeadless toggles headless mode. The default is headless.
func WithHeadless(headless bool) ChromeOption {
	return func(o *chromeOptions) {
		o.headless = headless
	}
}

// WithExecPath sets the Chrome executable.
func WithExecPath(path string) ChromeOption {
	return func(o *chromeOptions) {
		o.execPath = path
	}
}

// WithProxy routes browser traffic through the given proxy server.
func WithProxy(address string) ChromeOption {
	return func(o *chromeOptions) {
		o.proxy = address
	}
}

// WithUserAgent overrides the browser user agent.
func WithUserAgent(ua string) ChromeOption {
	return func(o *chromeOptions) {
		o.userAgent = ua
	}
}

// WithWindowSize sets the window size in CSS pixels.
func WithWindowSize(width, height int) ChromeOption {
	return func(o *chromeOptions) {
		o.width = width
		o.height = height
	}
}

// WithImplicitWait sets how long element lookups retry before failing.
func WithImplicitWait(d time.Duration) ChromeOption {
	return func(o *chromeOptions) {
		o.implicitWait = d
	}
}

// WithActionTimeout bounds navigation, clicks and script execution.
func WithActionTimeout(d time.Duration) ChromeOption {
	return func(o *chromeOptions) {
		o.actionWait = d
	}
}

// WithLogger sets the logger receiving chromedp diagnostics.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(o *chromeOptions) {
		o.logger = logger
	}
}

// Launch starts Chrome and opens the tab the checks share.
// The returned session must be closed by the caller.
func Launch(ctx context.Context, opts ...ChromeOption) (*ChromeSession, error) {
	o := chromeOptions{
		headless:     true,
		width:        defaultWindowWidth,
		height:       defaultWindowHeight,
		implicitWait: defaultImplicitWait,
		actionWait:   defaultActionWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.headless),
		chromedp.WindowSize(o.width, o.height),
	)
	if o.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.execPath))
	}
	if o.proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(o.proxy))
	}
	if o.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(o.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	logger := o.logger
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)

	// The first Run allocates the browser and the tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	logger.Info("chrome started",
		"headless", o.headless,
		"window", fmt.Sprintf("%dx%d", o.width, o.height),
		"implicitWait", o.implicitWait,
	)

	s := &ChromeSession{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger,
	}
	s.page = &chromePage{
		ctx:          browserCtx,
		implicitWait: o.implicitWait,
		actionWait:   o.actionWait,
	}
	return s, nil
}

// Page returns the shared tab.
func (s *ChromeSession) Page() Page {
	return s.page
}

// Name returns "chrome".
func (s *ChromeSession) Name() string {
	return "chrome"
}

// Close shuts the browser down and waits for the process to exit.
func (s *ChromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	s.logger.Info("chrome stopped")
	return nil
}

// chromePage implements Page on a chromedp tab.
type chromePage struct {
	ctx          context.Context
	implicitWait time.Duration
	actionWait   time.Duration
}

// run executes actions under the tab context, bounded by timeout and
// cancelled together with the caller's ctx.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load event.
func (p *chromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, p.actionWait, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Find returns the first element in the document matching sel.
func (p *chromePage) Find(ctx context.Context, sel Selector) (Element, error) {
	return p.find(ctx, nil, sel)
}

// FindAll returns every element in the document matching sel.
func (p *chromePage) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	return p.findAll(ctx, nil, sel)
}

// Evaluate runs expr in the page.
func (p *chromePage) Evaluate(ctx context.Context, expr string, res any) error {
	if err := p.run(ctx, p.actionWait, chromedp.Evaluate(expr, res)); err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	return nil
}

// find looks up the first match of sel under root (the document when nil).
func (p *chromePage) find(ctx context.Context, root *cdp.Node, sel Selector) (Element, error) {
	if p.implicitWait <= 0 {
		elems, err := p.findAll(ctx, root, sel)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
		}
		return elems[0], nil
	}

	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if root != nil {
		opts = append(opts, chromedp.FromNode(root))
	}

	err := p.run(ctx, p.implicitWait, chromedp.Nodes(sel.CSS(), &nodes, opts...))
	if err != nil {
		return nil, p.lookupError(ctx, sel, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return &chromeElement{page: p, node: nodes[0]}, nil
}

// findAll looks up every match of sel under root (the document when nil).
// It waits up to the implicit wait for a first match and returns an empty
// slice when none appears.
func (p *chromePage) findAll(ctx context.Context, root *cdp.Node, sel Selector) ([]Element, error) {
	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQueryAll}
	if root != nil {
		opts = append(opts, chromedp.FromNode(root))
	}
	if p.implicitWait <= 0 {
		opts = append(opts, chromedp.AtLeast(0))
	}

	err := p.run(ctx, p.implicitWait, chromedp.Nodes(sel.CSS(), &nodes, opts...))
	if err != nil {
		return p.emptyOnNotFound(ctx, sel, err)
	}

	elems := make([]Element, len(nodes))
	for i, n := range nodes {
		elems[i] = &chromeElement{page: p, node: n}
	}
	return elems, nil
}

// lookupError maps an expired implicit wait to ErrNotFound. Cancellation
// of the caller's context is passed through unchanged.
func (p *chromePage) lookupError(ctx context.Context, sel Selector, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return fmt.Errorf("failed to query %s: %w", sel, err)
}

// emptyOnNotFound turns an expired implicit wait into an empty result.
func (p *chromePage) emptyOnNotFound(ctx context.Context, sel Selector, err error) ([]Element, error) {
	lerr := p.lookupError(ctx, sel, err)
	if errors.Is(lerr, ErrNotFound) {
		return []Element{}, nil
	}
	return nil, lerr
}

// chromeElement implements Element on a DOM node.
type chromeElement struct {
	page *chromePage
	node *cdp.Node
}

// ids returns the node as a ByNodeID selector.
func (e *chromeElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// Find returns the first descendant matching sel.
func (e *chromeElement) Find(ctx context.Context, sel Selector) (Element, error) {
	return e.page.find(ctx, e.node, sel)
}

// FindAll returns every descendant matching sel.
func (e *chromeElement) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	return e.page.findAll(ctx, e.node, sel)
}

// Text returns the rendered text (innerText) of the node.
func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.page.run(ctx, e.page.actionWait,
		chromedp.JavascriptAttribute(e.ids(), "innerText", &text, chromedp.ByNodeID),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read text of <%s>: %w", strings.ToLower(e.node.NodeName), err)
	}
	return strings.TrimSpace(text), nil
}

// Attribute returns an attribute value. href and src are read from the DOM
// property so relative links come back absolute.
func (e *chromeElement) Attribute(ctx context.Context, name string) (string, error) {
	if name == "href" || name == "src" {
		var value string
		err := e.page.run(ctx, e.page.actionWait,
			chromedp.JavascriptAttribute(e.ids(), name, &value, chromedp.ByNodeID),
		)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		return value, nil
	}

	var (
		value string
		ok    bool
	)
	err := e.page.run(ctx, e.page.actionWait,
		chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

// OuterHTML returns the node markup.
func (e *chromeElement) OuterHTML(ctx context.Context) (string, error) {
	var html string
	err := e.page.run(ctx, e.page.actionWait,
		chromedp.OuterHTML(e.ids(), &html, chromedp.ByNodeID),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read outer html: %w", err)
	}
	return html, nil
}

// Click clicks the node once it is visible.
func (e *chromeElement) Click(ctx context.Context) error {
	if err := e.page.run(ctx, e.page.actionWait, chromedp.Click(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("failed to click <%s>: %w", strings.ToLower(e.node.NodeName), err)
	}
	return nil
}
