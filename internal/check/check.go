package check

import (
	"context"
	"time"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/config"
)

// Scope is what a check runs against.
type Scope struct {
	// Page is the loaded page.
	Page browser.Page

	// Root is the resolved region root element.
	Root browser.Element

	// SiteRoot is the URL the site logo must link to.
	SiteRoot string

	// Expect is the expectation set.
	Expect config.Expectations

	// ScrollTimeout and PollInterval drive the scroll-to-top wait.
	ScrollTimeout time.Duration
	PollInterval  time.Duration
}

// Func is the body of a check.
type Func func(ctx context.Context, s *Scope) error

// Check is a named assertion.
type Check struct {
	Name        string
	Description string
	Run         Func
}

// Region is a group of checks sharing a root element.
type Region struct {
	// Name is the region name used by the region filter.
	Name string

	// RootID is the identifier of the region root element.
	RootID string

	// Checks run in order, independently of each other.
	Checks []Check
}

// Root returns the selector of the region root.
func (r Region) Root() browser.Selector {
	return browser.ID(r.RootID)
}

// Regions returns the full catalogue in execution order.
func Regions() []Region {
	return []Region{
		HeaderRegion(),
		BodyRegion(),
		FooterRegion(),
	}
}

// Lookup returns the region with the given name.
func Lookup(name string) (Region, bool) {
	for _, r := range Regions() {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}
