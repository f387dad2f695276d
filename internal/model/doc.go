// Package model defines the result types shared by the suite runner, the
// report writers and the run history database.
//
// A RunReport holds one RegionResult per page region (header, body, footer),
// each holding the CheckResult of every check executed in that region.
// All types serialize to JSON for report output and database storage.
package model
