package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrInvalidURL is returned when the target is empty or is not an
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid target url: must be an absolute http or https url")

	// ErrInvalidTimeout is returned when the page load timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidImplicitWait is returned when the implicit wait is negative.
	// Zero is allowed and means lookups fail on the first miss.
	ErrInvalidImplicitWait = errors.New("invalid implicit wait: must be non-negative")

	// ErrInvalidScrollTimeout is returned when the scroll settle timeout or
	// its poll interval is not positive.
	ErrInvalidScrollTimeout = errors.New("invalid scroll timeout: timeout and poll interval must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownRegion is returned when a region filter names a region that
	// does not exist.
	ErrUnknownRegion = errors.New("unknown region: must be one of header, body, footer")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port"
	// with a port between 1 and 65535.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrInvalidWindowSize is returned when the browser window has a
	// non-positive dimension.
	ErrInvalidWindowSize = errors.New("invalid window size: width and height must be positive")
)
