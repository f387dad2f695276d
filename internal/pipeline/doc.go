// Package pipeline runs the check catalogue against a page.
//
// Each page region is a Step. A RegionStep navigates to the target, resolves
// the region root once, records a digest of the root markup and then runs
// every check of the region independently, recording one result per check.
// The Pipeline executes the steps in order on a single goroutine and stops
// before the next step when the context is cancelled.
package pipeline
