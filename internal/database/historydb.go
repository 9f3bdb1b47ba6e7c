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

	"github.com/nao1215/notionscan/internal/model"
)

// FileName is the name of the SQLite file inside the history directory.
const FileName = "notionscan.db"

// storedTimeFormat keeps a fixed width so timestamps sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrReportNotFound is returned when a requested scan report does not exist.
var ErrReportNotFound = errors.New("scan report not found")

// HistoryDB stores finished scan reports so that later scans can be compared
// against earlier ones.
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
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan with --save-history first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
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

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace TEXT NOT NULL,
		scan_timestamp TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		high_risk INTEGER NOT NULL,
		medium_risk INTEGER NOT NULL,
		low_risk INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_workspace ON scan_reports(workspace);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(scan_timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport stores a finished report and returns its ID.
// Reports without a workspace name are stored under an empty workspace.
func (hdb *HistoryDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO scan_reports
		(workspace, scan_timestamp, total_pages, high_risk, medium_risk, low_risk, fingerprint, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.WorkspaceName,
		report.ScanTimestamp.UTC().Format(storedTimeFormat),
		report.TotalPagesScanned,
		report.RiskSummary.High,
		report.RiskSummary.Medium,
		report.RiskSummary.Low,
		report.Fingerprint(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}

	return result.LastInsertId()
}

// ScanReportMetadata contains summary information about a stored scan.
// It is used for listing history without loading full reports.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Workspace is the workspace name the scan was labelled with.
	Workspace string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// TotalPages is the number of pages scanned.
	TotalPages int

	// RiskSummary holds the per-level page counts.
	RiskSummary model.RiskSummary

	// Fingerprint identifies the scan outcome. Equal fingerprints mean
	// nothing changed between two scans.
	Fingerprint string
}

// GetScanHistoryWithMetadata lists stored scans for a workspace, newest first.
func (hdb *HistoryDB) GetScanHistoryWithMetadata(ctx context.Context, workspace string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, workspace, scan_timestamp, total_pages, high_risk, medium_risk, low_risk, fingerprint
	FROM scan_reports
	WHERE workspace = ?
	ORDER BY scan_timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Workspace,
			&timestamp,
			&meta.TotalPages,
			&meta.RiskSummary.High,
			&meta.RiskSummary.Medium,
			&meta.RiskSummary.Low,
			&meta.Fingerprint,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanHistory returns every stored report for a workspace, newest first.
// Rows whose JSON cannot be decoded are skipped.
func (hdb *HistoryDB) GetScanHistory(ctx context.Context, workspace string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE workspace = ?
	ORDER BY scan_timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, workspace)
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
			continue
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// GetLatestScanReport returns the most recent report for a workspace.
func (hdb *HistoryDB) GetLatestScanReport(ctx context.Context, workspace string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE workspace = ?
	ORDER BY scan_timestamp DESC, id DESC
	LIMIT 1
	`
	return hdb.queryReport(ctx, query, workspace)
}

// GetScanReportByID retrieves a scan report by its database ID.
func (hdb *HistoryDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`
	return hdb.queryReport(ctx, query, id)
}

func (hdb *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.ScanReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
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

// ListWorkspaces returns every workspace with stored scans.
func (hdb *HistoryDB) ListWorkspaces(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT workspace FROM scan_reports
	ORDER BY workspace
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []string
	for rows.Next() {
		var ws string
		if err := rows.Scan(&ws); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}

	return workspaces, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
