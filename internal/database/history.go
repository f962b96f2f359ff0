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

	"github.com/a11yscan/contrastscan/internal/model"
)

// HistoryDB provides SQLite-based storage for audit reports.
// It manages connection pooling and provides methods for saving and
// querying scan history.
//
// Design decision: We use a single database file for all documents
// rather than one file per document. This keeps the history directory
// tidy and makes cross-document listings a single query.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
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

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "contrastscan.db")

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

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
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

	// SQLite only supports one writer, so a single connection avoids
	// lock contention entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Audit reports store complete scan results as JSON, plus the
	-- counts needed to render a history listing without unmarshaling
	-- every stored report.
	CREATE TABLE IF NOT EXISTS audit_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_path TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		failing_groups INTEGER DEFAULT 0,
		passing_groups INTEGER DEFAULT 0,
		failing_elements INTEGER DEFAULT 0,
		truncated INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_document ON audit_reports(document_path);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON audit_reports(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAuditReport saves a complete audit report as JSON together with
// its summary counts. It returns the database ID of the new row.
func (hdb *HistoryDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := model.NewSummary(report)

	truncated := 0
	if report.Truncated {
		truncated = 1
	}

	query := `
	INSERT INTO audit_reports (document_path, report_json, failing_groups, passing_groups, failing_elements, truncated)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.DocumentPath,
		string(reportJSON),
		summary.FailingGroups,
		summary.PassingGroups,
		summary.FailingElements,
		truncated,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save audit report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestReport retrieves the most recent audit report for a document.
// Returns nil without error when no report exists.
func (hdb *HistoryDB) GetLatestReport(ctx context.Context, documentPath string) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE document_path = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, documentPath).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListDocuments returns all document paths with at least one stored report.
func (hdb *HistoryDB) ListDocuments(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT document_path FROM audit_reports
	ORDER BY document_path
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document path: %w", err)
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying scan history without loading full reports.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// DocumentPath is the scanned document file.
	DocumentPath string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// FailingGroups is the number of distinct failing color pairings.
	FailingGroups int

	// PassingGroups is the number of distinct passing color pairings.
	PassingGroups int

	// FailingElements is the total number of failing elements.
	FailingElements int

	// Truncated reports whether the scan hit a traversal cap.
	Truncated bool
}

// GetReportHistory retrieves report metadata for a document, newest first.
// This is more efficient than loading full reports when only the
// listing is needed.
func (hdb *HistoryDB) GetReportHistory(ctx context.Context, documentPath string) ([]ReportMetadata, error) {
	query := `
	SELECT id, document_path, timestamp, failing_groups, passing_groups, failing_elements, truncated
	FROM audit_reports
	WHERE document_path = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, documentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var truncated int

		if err := rows.Scan(&meta.ID, &meta.DocumentPath, &timestamp, &meta.FailingGroups, &meta.PassingGroups, &meta.FailingElements, &truncated); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.Truncated = truncated != 0

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves an audit report by its database ID.
// Returns nil without error when no report with that ID exists.
func (hdb *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
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
	return time.Time{}
}
