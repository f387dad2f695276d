package browser

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a selector matches no element before the
	// implicit wait elapses.
	ErrNotFound = errors.New("element not found")

	// ErrUnsupported is returned by sessions that cannot perform an
	// operation, such as script execution on a static page.
	ErrUnsupported = errors.New("operation not supported by this session")

	// ErrNotNavigated is returned when a page is queried before Navigate.
	ErrNotNavigated = errors.New("page has not been navigated")
)

// Session owns a browser process (or its stand-in) for the duration of a run.
// Close must be called exactly once when the run ends, whatever its outcome.
type Session interface {
	// Page returns the page all checks share.
	Page() Page

	// Name identifies the driver in reports ("chrome", "static").
	Name() string

	// Close releases the browser.
	Close() error
}

// Page is a browser tab.
type Page interface {
	// Navigate loads url and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// Find returns the first element matching sel anywhere in the document.
	Find(ctx context.Context, sel Selector) (Element, error)

	// FindAll returns every element matching sel in the document.
	// No match yields an empty slice and a nil error.
	FindAll(ctx context.Context, sel Selector) ([]Element, error)

	// Evaluate runs a script expression and decodes its result into res.
	// res may be nil when the result is not needed.
	Evaluate(ctx context.Context, expr string, res any) error
}

// Element is a handle to one DOM node.
type Element interface {
	// Find returns the first descendant matching sel.
	Find(ctx context.Context, sel Selector) (Element, error)

	// FindAll returns every descendant matching sel.
	FindAll(ctx context.Context, sel Selector) ([]Element, error)

	// Text returns the visible text of the element, trimmed.
	Text(ctx context.Context) (string, error)

	// Attribute returns the value of the named attribute. For href and src
	// the resolved absolute URL is returned, as the DOM property would.
	// A missing attribute yields an empty string.
	Attribute(ctx context.Context, name string) (string, error)

	// OuterHTML returns the serialized markup of the element.
	OuterHTML(ctx context.Context) (string, error)

	// Click clicks the element.
	Click(ctx context.Context) error
}
