package model

import "time"

// CheckResult is the outcome of one check.
type CheckResult struct {
	// Region is the region the check belongs to ("header", "body", "footer").
	Region string `json:"region"`

	// Name is the check identifier, such as "menu_structure".
	Name string `json:"name"`

	// Description says what the check verifies.
	Description string `json:"description,omitempty"`

	// Status is the outcome.
	Status Status `json:"status"`

	// Failure is set when Status is StatusFailed.
	Failure FailureKind `json:"failure,omitempty"`

	// Message carries the failure or skip reason.
	Message string `json:"message,omitempty"`

	// Duration is how long the check ran.
	Duration time.Duration `json:"duration"`
}

// Key identifies the check across runs.
func (c CheckResult) Key() string {
	return c.Region + "/" + c.Name
}

// RegionResult groups the checks of one page region.
type RegionResult struct {
	// Name is the region name.
	Name string `json:"name"`

	// Root is the identifier of the region root element ("hd", "bd", "ft").
	Root string `json:"root"`

	// Digest is the hex SHA3-256 of the root element's outer HTML when it
	// was resolved. Empty when the root could not be resolved.
	Digest string `json:"digest,omitempty"`

	// Checks holds the results in execution order.
	Checks []CheckResult `json:"checks"`

	// Duration covers navigation, root resolution and all checks.
	Duration time.Duration `json:"duration"`
}

// Count returns the number of checks with the given status.
func (r RegionResult) Count(status Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Summary aggregates check outcomes over a run.
type Summary struct {
	Total             int `json:"total"`
	Passed            int `json:"passed"`
	Failed            int `json:"failed"`
	Skipped           int `json:"skipped"`
	LookupFailures    int `json:"lookup_failures"`
	AssertionFailures int `json:"assertion_failures"`
}

// RunReport is the result of one run against a target page.
type RunReport struct {
	// Target is the URL that was checked.
	Target string `json:"target"`

	// Driver names the session implementation ("chrome" or "static").
	Driver string `json:"driver"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`

	// Regions holds the region results in execution order.
	Regions []RegionResult `json:"regions"`

	// TimedOut is set when the run was cancelled before every region ran.
	TimedOut bool `json:"timed_out"`

	// Error is a run-level error that prevented checks from executing,
	// such as a browser that failed to start.
	Error string `json:"error,omitempty"`

	// Summary is computed by Finalize.
	Summary Summary `json:"summary"`
}

// NewRunReport creates an empty report for target.
func NewRunReport(target, driver string) *RunReport {
	return &RunReport{
		Target:    target,
		Driver:    driver,
		StartedAt: time.Now(),
		Regions:   []RegionResult{},
	}
}

// AddRegion appends a region result.
func (r *RunReport) AddRegion(region RegionResult) {
	r.Regions = append(r.Regions, region)
}

// Region returns the result of the named region.
func (r *RunReport) Region(name string) (RegionResult, bool) {
	for _, region := range r.Regions {
		if region.Name == name {
			return region, true
		}
	}
	return RegionResult{}, false
}

// Checks returns every check result in execution order.
func (r *RunReport) Checks() []CheckResult {
	var checks []CheckResult
	for _, region := range r.Regions {
		checks = append(checks, region.Checks...)
	}
	return checks
}

// Finalize records the run duration and recomputes the summary.
func (r *RunReport) Finalize() {
	r.Duration = time.Since(r.StartedAt)

	s := Summary{}
	for _, c := range r.Checks() {
		s.Total++
		switch c.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
			switch c.Failure {
			case FailureLookup:
				s.LookupFailures++
			case FailureAssertion:
				s.AssertionFailures++
			}
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}

// Passed reports whether the run completed without failures.
// Skipped checks do not fail a run.
func (r *RunReport) Passed() bool {
	return r.Error == "" && !r.TimedOut && r.Summary.Failed == 0
}
