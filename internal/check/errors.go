package check

import (
	"errors"
	"fmt"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/model"
)

// ErrSkipped marks a check the session cannot perform.
var ErrSkipped = errors.New("check skipped")

// LookupError reports an element that could not be located.
type LookupError struct {
	Selector browser.Selector
	Err      error
}

// Error implements error.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Selector, e.Err)
}

// Unwrap returns the driver error.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// AssertionError reports a located element that did not match.
type AssertionError struct {
	Message string
}

// Error implements error.
func (e *AssertionError) Error() string {
	return e.Message
}

// assertf returns an *AssertionError with a formatted message.
func assertf(format string, args ...any) error {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// skip wraps reason so that Classify reports the check as skipped.
func skip(reason error) error {
	return fmt.Errorf("%w: %w", ErrSkipped, reason)
}

// Classify maps the error returned by a check to its status and failure kind.
// Errors other than assertions, including driver errors while reading a
// located element, count as lookup failures.
func Classify(err error) (model.Status, model.FailureKind) {
	if err == nil {
		return model.StatusPassed, model.FailureNone
	}
	if errors.Is(err, ErrSkipped) || errors.Is(err, browser.ErrUnsupported) {
		return model.StatusSkipped, model.FailureNone
	}

	var assertErr *AssertionError
	if errors.As(err, &assertErr) {
		return model.StatusFailed, model.FailureAssertion
	}
	return model.StatusFailed, model.FailureLookup
}
