package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTarget is the page the suite pins.
	DefaultTarget = "https://www.linux.org.ru/"

	// DefaultImplicitWait bounds how long a single element lookup retries
	// before it is reported as a lookup failure.
	DefaultImplicitWait = 1 * time.Second

	// DefaultTimeout bounds navigation (page load) per region group.
	DefaultTimeout = 30 * time.Second

	// DefaultScrollTimeout is how long the scroll-to-top check waits for the
	// page offset to return to zero after the control is clicked.
	DefaultScrollTimeout = 3 * time.Second

	// DefaultPollInterval is the interval between scroll offset samples.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultWindowWidth and DefaultWindowHeight size the headless window.
	// The page must be taller than the window for the scroll check to work.
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720

	// DefaultUserAgent is sent by the static session. The Chrome session
	// keeps the browser's own user agent unless one is configured.
	DefaultUserAgent = "lorcheck/1.0 (+https://github.com/nao1215/lorcheck)"

	// AppName is the application name used for XDG directory paths.
	AppName = "lorcheck"
)

// Region names accepted by the region filter.
const (
	RegionHeader = "header"
	RegionBody   = "body"
	RegionFooter = "footer"
)

// Regions lists every region in execution order.
var Regions = []string{RegionHeader, RegionBody, RegionFooter}

// Config holds all configuration options for a lorcheck run.
// It is populated from defaults, the config file and CLI flags, and is
// passed down explicitly rather than kept in global state.
type Config struct {
	// Target is the page under test. Its root URL is also the expected logo link.
	Target string

	// Static selects the HTTP + goquery session instead of Chrome.
	// Interactive checks are skipped in this mode.
	Static bool

	// Headless runs Chrome without a window. Defaults to true.
	Headless bool

	// ChromePath overrides the Chrome executable lookup.
	ChromePath string

	// ProxyAddress routes browser traffic through a proxy ("host:port").
	// The static session treats it as a SOCKS5 proxy.
	ProxyAddress string

	// UserAgent overrides the user agent. Empty keeps the session default.
	UserAgent string

	// WindowWidth and WindowHeight size the Chrome window.
	WindowWidth  int
	WindowHeight int

	// ImplicitWait bounds each element lookup.
	ImplicitWait time.Duration

	// Timeout bounds each navigation.
	Timeout time.Duration

	// ScrollTimeout bounds the wait for the scroll-to-top animation.
	ScrollTimeout time.Duration

	// PollInterval is the scroll offset sampling interval.
	PollInterval time.Duration

	// Regions restricts the run to the named regions. Empty means all.
	Regions []string

	// Verbose enables debug logging.
	Verbose bool

	// NoColor disables colored terminal output.
	NoColor bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .lorcheck is searched in the current and home directories.
	ConfigFilePath string

	// Expect holds the literal values the page is checked against.
	Expect Expectations

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile redirects the report to a file.
	ReportFile string

	// DBDir is the directory holding the run history database.
	DBDir string

	// SaveToDB stores the run report in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Target:        DefaultTarget,
		Headless:      true,
		WindowWidth:   DefaultWindowWidth,
		WindowHeight:  DefaultWindowHeight,
		ImplicitWait:  DefaultImplicitWait,
		Timeout:       DefaultTimeout,
		ScrollTimeout: DefaultScrollTimeout,
		PollInterval:  DefaultPollInterval,
		Expect:        DefaultExpectations(),
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
	}
}

// XDGDataDir returns the XDG data directory for lorcheck.
// On Linux: ~/.local/share/lorcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lorcheck.
// On Linux: ~/.config/lorcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if err := ValidateTarget(c.Target); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ImplicitWait < 0 {
		return ErrInvalidImplicitWait
	}

	if c.ScrollTimeout <= 0 || c.PollInterval <= 0 {
		return ErrInvalidScrollTimeout
	}

	if c.ProxyAddress != "" {
		if err := ValidateProxyAddress(c.ProxyAddress); err != nil {
			return err
		}
	}

	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return ErrInvalidWindowSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for _, r := range c.Regions {
		if !slices.Contains(Regions, r) {
			return fmt.Errorf("%w: %q", ErrUnknownRegion, r)
		}
	}

	return nil
}

// ValidateTarget reports whether target is an absolute http(s) URL.
func ValidateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || target == "" {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// ValidateProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1-65535. IPv6 hosts must be bracketed.
func ValidateProxyAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, address)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, address)
	}
	return nil
}

// SiteRoot returns the scheme and host of the target with a trailing slash,
// which is what the site logo links to.
func (c *Config) SiteRoot() string {
	u, err := url.Parse(c.Target)
	if err != nil {
		return c.Target
	}
	return u.Scheme + "://" + u.Host + "/"
}

// RegionEnabled reports whether the named region should run.
func (c *Config) RegionEnabled(name string) bool {
	return len(c.Regions) == 0 || slices.Contains(c.Regions, name)
}
