package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/lorcheck/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "lorcheck.db"

// RunDB provides SQLite-based storage for run reports.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store complete run reports as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		driver TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		passed INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Region digests track the markup of each region root per run
	CREATE TABLE IF NOT EXISTS region_digests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		region TEXT NOT NULL,
		digest TEXT NOT NULL,
		UNIQUE(run_id, region)
	);

	CREATE INDEX IF NOT EXISTS idx_digests_region ON region_digests(region);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRunReport stores a run report and its region digests.
// It returns the ID of the new run.
func (rdb *RunDB) SaveRunReport(ctx context.Context, report *model.RunReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	passed := 0
	if report.Passed() {
		passed = 1
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (target, driver, timestamp, passed, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.Target,
		report.Driver,
		report.StartedAt.UTC().Format(timestampLayout),
		passed,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run report: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, region := range report.Regions {
		if region.Digest == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO region_digests (run_id, region, digest) VALUES (?, ?, ?)`,
			runID, region.Name, region.Digest,
		); err != nil {
			return 0, fmt.Errorf("failed to save digest of %s: %w", region.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run report: %w", err)
	}
	return runID, nil
}

// GetLatestRunReport retrieves the most recent run report for a target.
// It returns nil when the target has no runs.
func (rdb *RunDB) GetLatestRunReport(ctx context.Context, target string) (*model.RunReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, target).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	return decodeReport(reportJSON)
}

// GetRunReportByID retrieves a run report by its database ID.
// It returns nil when no run has that ID.
func (rdb *RunDB) GetRunReportByID(ctx context.Context, id int64) (*model.RunReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	return decodeReport(reportJSON)
}

// GetRunHistory retrieves all run reports for a target, newest first.
func (rdb *RunDB) GetRunHistory(ctx context.Context, target string) ([]*model.RunReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var reports []*model.RunReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		report, err := decodeReport(reportJSON)
		if err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// RunMetadata contains summary information about a stored run.
// It is used for listing history without loading full reports.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Target is the checked URL.
	Target string

	// Driver is the session driver used.
	Driver string

	// Timestamp is when the run started.
	Timestamp time.Time

	// Passed is the overall verdict.
	Passed bool

	// Summary holds the check counts.
	Summary model.Summary
}

// GetRunHistoryWithMetadata retrieves run metadata for a target, newest first.
func (rdb *RunDB) GetRunHistoryWithMetadata(ctx context.Context, target string) ([]RunMetadata, error) {
	query := `
	SELECT id, target, driver, timestamp, passed, summary
	FROM runs
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Target, &meta.Driver, &timestamp, &meta.Passed, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.Summary); err != nil {
				meta.Summary = model.Summary{}
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListTargets returns every target with at least one stored run.
func (rdb *RunDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT target FROM runs ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// DigestRecord is the markup digest of a region in one run.
type DigestRecord struct {
	RunID     int64
	Digest    string
	Timestamp time.Time
}

// GetRegionDigests returns the digest history of a region for a target,
// newest first.
func (rdb *RunDB) GetRegionDigests(ctx context.Context, target, region string) ([]DigestRecord, error) {
	query := `
	SELECT d.run_id, d.digest, r.timestamp
	FROM region_digests d
	JOIN runs r ON r.id = d.run_id
	WHERE r.target = ? AND d.region = ?
	ORDER BY r.timestamp DESC, r.id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, target, region)
	if err != nil {
		return nil, fmt.Errorf("failed to get region digests: %w", err)
	}
	defer rows.Close()

	var records []DigestRecord
	for rows.Next() {
		var rec DigestRecord
		var timestamp string
		if err := rows.Scan(&rec.RunID, &rec.Digest, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan digest: %w", err)
		}
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// decodeReport parses a stored report.
func decodeReport(reportJSON string) (*model.RunReport, error) {
	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampLayout is the layout run timestamps are stored in.
const timestampLayout = "2006-01-02 15:04:05.000"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
