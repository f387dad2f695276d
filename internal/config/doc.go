// Package config provides configuration structures and utilities for lorcheck.
// It defines the browser session settings, the target page, report output
// preferences and the expectation set the page is checked against.
package config
