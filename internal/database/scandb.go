package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/orphanscan/internal/model"
)

// ErrScanNotFound is returned when a requested scan ID does not exist.
var ErrScanNotFound = errors.New("scan not found")

// ScanDB provides SQLite-based storage for scan run summaries.
// It manages connection pooling and provides methods for saving runs
// and querying history.
//
// Design decision: We use a single database file for all roots rather
// than one file per root. This keeps cross-root queries (list all
// scanned roots) trivial and simplifies backup/restore.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "orphanscan.db")

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

	// SQLite only supports one writer; multiple connections buy nothing
	// for this write-mostly workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

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
	-- One row per completed scan run
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		component_count INTEGER NOT NULL,
		referenced_count INTEGER NOT NULL,
		orphan_count INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root);
	CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at);

	-- One row per orphan path per scan
	CREATE TABLE IF NOT EXISTS orphans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		UNIQUE(scan_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_orphans_scan ON orphans(scan_id);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord is one stored run summary.
type ScanRecord struct {
	ID              int64
	Root            string
	ScannedAt       time.Time
	ComponentCount  int
	ReferencedCount int
	OrphanCount     int
	Elapsed         time.Duration
}

// SaveScanReport stores a completed run and its orphan list.
// The scan row and orphan rows are written in one transaction so a
// partially-saved run can never appear in history.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO scans (root, scanned_at, component_count, referenced_count, orphan_count, elapsed_ms)
	VALUES (?, ?, ?, ?, ?, ?)`,
		report.Root,
		report.DateScanned.UTC(),
		report.ComponentCount,
		report.ReferencedCount,
		len(report.Orphans),
		report.Elapsed.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan ID: %w", err)
	}

	for _, path := range report.Orphans {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orphans (scan_id, path) VALUES (?, ?)`,
			scanID, path,
		); err != nil {
			return 0, fmt.Errorf("failed to insert orphan %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	return scanID, nil
}

// GetScanHistory returns all run summaries for a root, newest first.
func (sdb *ScanDB) GetScanHistory(ctx context.Context, root string) ([]ScanRecord, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT id, root, scanned_at, component_count, referenced_count, orphan_count, elapsed_ms
	FROM scans
	WHERE root = ?
	ORDER BY scanned_at DESC, id DESC`, root)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.Root, &r.ScannedAt,
			&r.ComponentCount, &r.ReferencedCount, &r.OrphanCount, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetScan returns one run summary by ID.
func (sdb *ScanDB) GetScan(ctx context.Context, scanID int64) (*ScanRecord, error) {
	var r ScanRecord
	var elapsedMS int64
	err := sdb.db.QueryRowContext(ctx, `
	SELECT id, root, scanned_at, component_count, referenced_count, orphan_count, elapsed_ms
	FROM scans WHERE id = ?`, scanID).
		Scan(&r.ID, &r.Root, &r.ScannedAt,
			&r.ComponentCount, &r.ReferencedCount, &r.OrphanCount, &elapsedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrScanNotFound, scanID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &r, nil
}

// GetOrphans returns the sorted orphan paths stored for a scan.
func (sdb *ScanDB) GetOrphans(ctx context.Context, scanID int64) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx,
		`SELECT path FROM orphans WHERE scan_id = ? ORDER BY path ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphans: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan orphan row: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, rows.Err()
}

// ListScannedRoots returns all distinct roots present in the database,
// sorted for stable display.
func (sdb *ScanDB) ListScannedRoots(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT DISTINCT root FROM scans ORDER BY root ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roots: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan root row: %w", err)
		}
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// ScanDiff is the orphan-set difference between two stored runs.
type ScanDiff struct {
	// Current and Previous identify the compared runs.
	Current  ScanRecord `json:"current"`
	Previous ScanRecord `json:"previous"`

	// NewOrphans are paths orphaned now but not in the previous run.
	NewOrphans []string `json:"new_orphans"`

	// ResolvedOrphans are paths orphaned previously but not anymore:
	// they gained a reference, became entry points, or were deleted.
	ResolvedOrphans []string `json:"resolved_orphans"`

	// UnchangedCount is the number of paths orphaned in both runs.
	UnchangedCount int `json:"unchanged_count"`
}

// CompareScans computes the orphan-set difference between two runs.
func (sdb *ScanDB) CompareScans(ctx context.Context, currentID, previousID int64) (*ScanDiff, error) {
	current, err := sdb.GetScan(ctx, currentID)
	if err != nil {
		return nil, err
	}
	previous, err := sdb.GetScan(ctx, previousID)
	if err != nil {
		return nil, err
	}

	currentOrphans, err := sdb.GetOrphans(ctx, currentID)
	if err != nil {
		return nil, err
	}
	previousOrphans, err := sdb.GetOrphans(ctx, previousID)
	if err != nil {
		return nil, err
	}

	previousSet := make(map[string]bool, len(previousOrphans))
	for _, path := range previousOrphans {
		previousSet[path] = true
	}
	currentSet := make(map[string]bool, len(currentOrphans))
	for _, path := range currentOrphans {
		currentSet[path] = true
	}

	diff := &ScanDiff{
		Current:         *current,
		Previous:        *previous,
		NewOrphans:      make([]string, 0),
		ResolvedOrphans: make([]string, 0),
	}

	for _, path := range currentOrphans {
		if previousSet[path] {
			diff.UnchangedCount++
		} else {
			diff.NewOrphans = append(diff.NewOrphans, path)
		}
	}
	for _, path := range previousOrphans {
		if !currentSet[path] {
			diff.ResolvedOrphans = append(diff.ResolvedOrphans, path)
		}
	}

	sort.Strings(diff.NewOrphans)
	sort.Strings(diff.ResolvedOrphans)

	return diff, nil
}
