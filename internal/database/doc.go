// Package database stores run history in SQLite (modernc.org/sqlite, no cgo).
//
// RunDB keeps every run report as JSON together with its summary, and the
// markup digest of each region per run so layout changes can be traced
// across runs. The database is a single file under the XDG data directory.
package database
