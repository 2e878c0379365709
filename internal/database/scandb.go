package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/vscan/internal/model"
)

// ScanDB provides SQLite-based storage for fetched pages and scan reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all scan history
// rather than one file per host. This keeps history queries and scan
// comparisons simple and makes backup a single-file copy.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "vscan.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scan records store individual page fetches
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		host TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		snapshot TEXT,
		hash TEXT,
		headers TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_host ON scans(host);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_host ON scan_reports(host);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord represents a stored page fetch result.
type ScanRecord struct {
	ID          int64
	URL         string
	Host        string
	Timestamp   time.Time
	StatusCode  int
	ContentType string
	Title       string
	Snapshot    string
	Hash        string
	Headers     map[string][]string
}

// NewScanRecord builds a ScanRecord from a fetched page.
// The host is stored alongside the URL so that page history can be
// queried per target host.
func NewScanRecord(host string, page *model.Page) *ScanRecord {
	return &ScanRecord{
		URL:         page.URL,
		Host:        host,
		StatusCode:  page.StatusCode,
		ContentType: page.ContentType,
		Title:       page.Title,
		Snapshot:    page.Snapshot,
		Hash:        page.Hash,
		Headers:     page.Headers,
	}
}

// InsertScanRecord inserts or updates a scan record.
// Uses UPSERT to handle duplicates (same URL), so re-scanning a page
// replaces the stored copy rather than accumulating rows.
func (sdb *ScanDB) InsertScanRecord(ctx context.Context, record *ScanRecord) (int64, error) {
	// Serialize headers to JSON
	headersJSON, err := json.Marshal(record.Headers)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize headers: %w", err)
	}

	query := `
	INSERT INTO scans (url, host, status_code, content_type, title, snapshot, hash, headers)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		host = excluded.host,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		snapshot = excluded.snapshot,
		hash = excluded.hash,
		headers = excluded.headers,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := sdb.db.ExecContext(ctx, query,
		record.URL,
		record.Host,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.Snapshot,
		record.Hash,
		string(headersJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan record: %w", err)
	}

	return result.LastInsertId()
}

// GetScanRecord retrieves a scan record by URL.
func (sdb *ScanDB) GetScanRecord(ctx context.Context, url string) (*ScanRecord, error) {
	query := `
	SELECT id, url, host, timestamp, status_code, content_type, title, snapshot, hash, headers
	FROM scans
	WHERE url = ?
	`

	var record ScanRecord
	var headersJSON string
	var timestamp string

	err := sdb.db.QueryRowContext(ctx, query, url).Scan(
		&record.ID,
		&record.URL,
		&record.Host,
		&timestamp,
		&record.StatusCode,
		&record.ContentType,
		&record.Title,
		&record.Snapshot,
		&record.Hash,
		&headersJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan record: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	record.Timestamp = parseTimestamp(timestamp)

	// Parse headers
	if headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &record.Headers); err != nil {
			return nil, fmt.Errorf("failed to parse headers: %w", err)
		}
	}

	return &record, nil
}

// HasRecentScan checks if a URL was fetched within the specified duration.
func (sdb *ScanDB) HasRecentScan(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM scans
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := sdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent scan: %w", err)
	}

	return count > 0, nil
}

// SaveScanReport saves a complete scan report as JSON.
// The report is keyed by host so that repeated scans of the same site
// build up a comparable history even when the exact URL varies.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	// Serialize report to JSON
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Create risk summary
	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
		"total":    0,
	}
	if report.SimpleReport != nil {
		riskSummary["critical"] = report.SimpleReport.CriticalCount
		riskSummary["high"] = report.SimpleReport.HighCount
		riskSummary["medium"] = report.SimpleReport.MediumCount
		riskSummary["low"] = report.SimpleReport.LowCount
		riskSummary["info"] = report.SimpleReport.InfoCount
		riskSummary["total"] = report.SimpleReport.TotalFindings()
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO scan_reports (host, target, report_json, risk_summary)
	VALUES (?, ?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.Host,
		report.Target,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	return nil
}

// GetLatestScanReport retrieves the most recent scan report for a host.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, host string) (*model.ScanReport, error) {
	// The id tiebreaker keeps ordering stable when two scans land within
	// the same second (CURRENT_TIMESTAMP has second precision).
	query := `
	SELECT report_json FROM scan_reports
	WHERE host = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, host).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScannedHosts returns a list of all hosts with stored scan reports.
func (sdb *ScanDB) ListScannedHosts(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT host FROM scan_reports
	ORDER BY host
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// GetScanHistory retrieves scan reports for a host, newest first.
// A limit of zero or less returns the full history.
func (sdb *ScanDB) GetScanHistory(ctx context.Context, host string, limit int) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE host = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []interface{}{host}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Host is the scanned host.
	Host string

	// Target is the URL that was scanned.
	Target string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int
}

// GetScanHistoryWithMetadata retrieves scan report metadata for a host,
// newest first. A limit of zero or less returns the full history.
// This is more efficient than GetScanHistory when only metadata is needed.
func (sdb *ScanDB) GetScanHistoryWithMetadata(ctx context.Context, host string, limit int) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, host, target, timestamp, risk_summary
	FROM scan_reports
	WHERE host = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []interface{}{host}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Host, &meta.Target, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		// Parse timestamp
		meta.Timestamp = parseTimestamp(timestamp)

		// Parse risk summary
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		} else {
			meta.RiskSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID retrieves a scan report by its database ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
