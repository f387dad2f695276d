package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleReport() *RunReport {
	r := NewRunReport("https://www.linux.org.ru/", "chrome")
	r.AddRegion(RegionResult{
		Name: "header",
		Root: "hd",
		Checks: []CheckResult{
			{Region: "header", Name: "hd_structure", Status: StatusPassed},
			{Region: "header", Name: "menu_structure", Status: StatusFailed, Failure: FailureAssertion},
		},
	})
	r.AddRegion(RegionResult{
		Name: "footer",
		Root: "ft",
		Checks: []CheckResult{
			{Region: "footer", Name: "ft", Status: StatusFailed, Failure: FailureLookup},
			{Region: "footer", Name: "scroll_to_top", Status: StatusSkipped},
		},
	})
	return r
}

// TestRunReport_Finalize tests summary computation.
func TestRunReport_Finalize(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.StartedAt = time.Now().Add(-time.Second)
	r.Finalize()

	want := Summary{
		Total:             4,
		Passed:            1,
		Failed:            2,
		Skipped:           1,
		LookupFailures:    1,
		AssertionFailures: 1,
	}
	if diff := cmp.Diff(want, r.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if r.Duration < time.Second {
		t.Errorf("expected duration of at least 1s, got %v", r.Duration)
	}
}

// TestRunReport_Passed tests the overall verdict.
func TestRunReport_Passed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(r *RunReport)
		want   bool
	}{
		{
			name:   "failures fail the run",
			modify: func(r *RunReport) {},
			want:   false,
		},
		{
			name: "skipped checks do not fail the run",
			modify: func(r *RunReport) {
				r.Regions = []RegionResult{{Name: "footer", Checks: []CheckResult{
					{Name: "ft", Status: StatusPassed},
					{Name: "scroll_to_top", Status: StatusSkipped},
				}}}
			},
			want: true,
		},
		{
			name: "timeout fails the run",
			modify: func(r *RunReport) {
				r.Regions = nil
				r.TimedOut = true
			},
			want: false,
		},
		{
			name: "run error fails the run",
			modify: func(r *RunReport) {
				r.Regions = nil
				r.Error = "chrome not found"
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := sampleReport()
			tt.modify(r)
			r.Finalize()
			if got := r.Passed(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestRunReport_Region tests region lookup by name.
func TestRunReport_Region(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	footer, ok := r.Region("footer")
	if !ok {
		t.Fatal("expected footer region")
	}
	if footer.Count(StatusSkipped) != 1 {
		t.Errorf("expected 1 skipped check, got %d", footer.Count(StatusSkipped))
	}
	if _, ok := r.Region("body"); ok {
		t.Error("expected no body region")
	}
}

// TestCheckResult_Key tests the cross-run identifier.
func TestCheckResult_Key(t *testing.T) {
	t.Parallel()

	c := CheckResult{Region: "body", Name: "news"}
	if c.Key() != "body/news" {
		t.Errorf("expected body/news, got %s", c.Key())
	}
}

// TestStatus tests status and failure kind text.
func TestStatus(t *testing.T) {
	t.Parallel()

	if StatusPassed.Symbol() != "✓" || StatusFailed.Symbol() != "✗" || StatusSkipped.Symbol() != "-" {
		t.Error("unexpected status symbols")
	}
	if Status("other").Symbol() != "?" {
		t.Error("expected ? for unknown status")
	}
	if FailureNone.String() != "none" {
		t.Errorf("expected none, got %s", FailureNone.String())
	}
	if FailureLookup.String() != "lookup" {
		t.Errorf("expected lookup, got %s", FailureLookup.String())
	}
}
