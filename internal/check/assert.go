package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nao1215/lorcheck/internal/browser"
)

// finder is satisfied by both browser.Page and browser.Element.
type finder interface {
	Find(ctx context.Context, sel browser.Selector) (browser.Element, error)
	FindAll(ctx context.Context, sel browser.Selector) ([]browser.Element, error)
}

// find locates one element and wraps any failure in a *LookupError.
func find(ctx context.Context, from finder, sel browser.Selector) (browser.Element, error) {
	el, err := from.Find(ctx, sel)
	if err != nil {
		return nil, &LookupError{Selector: sel, Err: err}
	}
	return el, nil
}

// findAll locates every match. An empty result is not an error.
func findAll(ctx context.Context, from finder, sel browser.Selector) ([]browser.Element, error) {
	elems, err := from.FindAll(ctx, sel)
	if err != nil {
		return nil, &LookupError{Selector: sel, Err: err}
	}
	return elems, nil
}

// texts reads the text of every element.
func texts(ctx context.Context, elems []browser.Element) ([]string, error) {
	out := make([]string, 0, len(elems))
	for _, el := range elems {
		text, err := el.Text(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// attribute reads an attribute of el.
func attribute(ctx context.Context, el browser.Element, name string) (string, error) {
	value, err := el.Attribute(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}

// dedupe returns the distinct values of s in first-seen order.
func dedupe(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

// assertSet compares got and want as sets.
func assertSet(what string, want, got []string) error {
	if diff := cmp.Diff(dedupe(want), dedupe(got), sortStrings, cmpopts.EquateEmpty()); diff != "" {
		return assertf("%s mismatch (-want +got):\n%s", what, diff)
	}
	return nil
}

func assertEqual(what, want, got string) error {
	if want != got {
		return assertf("%s: expected %q, got %q", what, want, got)
	}
	return nil
}

func assertCount(what string, want, got int) error {
	if want != got {
		return assertf("%s: expected %d, got %d", what, want, got)
	}
	return nil
}

// assertContains requires every substring of subs to occur in text.
func assertContains(what, text string, subs []string) error {
	var missing []string
	for _, s := range subs {
		if !strings.Contains(text, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return assertf("%s is missing %q", what, missing)
	}
	return nil
}
