package model

// Status is the outcome of a single check.
type Status string

const (
	// StatusPassed means every assertion of the check held.
	StatusPassed Status = "passed"

	// StatusFailed means a lookup or an assertion failed.
	StatusFailed Status = "failed"

	// StatusSkipped means the session cannot perform the check,
	// for example the scroll check on a static session.
	StatusSkipped Status = "skipped"
)

// String returns the status as text.
func (s Status) String() string {
	return string(s)
}

// Symbol returns a one-character marker for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPassed:
		return "✓"
	case StatusFailed:
		return "✗"
	case StatusSkipped:
		return "-"
	default:
		return "?"
	}
}

// FailureKind tells why a failed check failed.
type FailureKind string

const (
	// FailureNone is the kind of a check that did not fail.
	FailureNone FailureKind = ""

	// FailureLookup means an expected element was not found within the
	// implicit wait.
	FailureLookup FailureKind = "lookup"

	// FailureAssertion means the element was found but its text, attribute
	// or count did not match the expectation.
	FailureAssertion FailureKind = "assertion"
)

// String returns the kind as text, "none" for FailureNone.
func (k FailureKind) String() string {
	if k == FailureNone {
		return "none"
	}
	return string(k)
}
