// Package index persists scan results in a local sqlite database.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"github.com/mehmetkoksal-w/routemap/internal/extract"
	"github.com/mehmetkoksal-w/routemap/internal/model"
)

// ScanSummary is the stored metadata of a completed scan.
type ScanSummary struct {
	ScanID           string
	Repository       string
	Root             string
	CommitHash       string // empty if the root is not a git repository
	FilesScanned     int
	EndpointCount    int
	DeclarationsSeen int
	Dropped          int
	StartedAt        time.Time
	CompletedAt      time.Time
}

// Open opens the sqlite database at the given path and applies pragmas.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(context.Background(), p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %s: %w", p, err)
		}
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// indexSchemaVersionTable creates the schema version tracking table
const indexSchemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// indexMigrations is an ordered list of database migrations for the index DB.
// Migrations are applied in order, starting from version 0.
// IMPORTANT: Never modify existing migrations, only add new ones.
var indexMigrations = []func(*sql.Tx) error{
	// Migration 0: Initial schema
	indexMigrateV0,
	// Migration 1: Add git commit hash tracking to scans
	indexMigrateV1,
}

// indexMigrateV0 creates the initial index schema (version 0)
func indexMigrateV0(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
            scan_id TEXT PRIMARY KEY,
            repository TEXT NOT NULL,
            root TEXT NOT NULL,
            started_at TEXT NOT NULL,
            completed_at TEXT NOT NULL,
            files_scanned INTEGER NOT NULL DEFAULT 0,
            endpoint_count INTEGER NOT NULL DEFAULT 0,
            declarations_seen INTEGER NOT NULL DEFAULT 0,
            dropped INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS endpoints (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            scan_id TEXT NOT NULL,
            method TEXT NOT NULL,
            path TEXT NOT NULL,
            file TEXT NOT NULL,
            line INTEGER NOT NULL,
            framework TEXT NOT NULL,
            handler TEXT DEFAULT '',
            FOREIGN KEY(scan_id) REFERENCES scans(scan_id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_scan ON endpoints(scan_id);`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_path ON endpoints(path);`,
		`CREATE TABLE IF NOT EXISTS params (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            endpoint_id INTEGER NOT NULL,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            kind TEXT NOT NULL,
            identifier TEXT DEFAULT '',
            FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_params_endpoint ON params(endpoint_id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// indexMigrateV1 adds git commit hash tracking to scans
func indexMigrateV1(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `ALTER TABLE scans ADD COLUMN commit_hash TEXT DEFAULT '';`)
	if err != nil {
		// Column might already exist from manual addition
		if !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("add commit_hash column: %w", err)
		}
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.ExecContext(context.Background(), indexSchemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for i := currentVersion + 1; i < len(indexMigrations); i++ {
		if err := runIndexMigration(db, i); err != nil {
			return fmt.Errorf("run migration %d: %w", i, err)
		}
	}
	return nil
}

// runIndexMigration executes a single migration in a transaction
func runIndexMigration(db *sql.DB, version int) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := indexMigrations[version](tx); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(context.Background(), "INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", version, now); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// CurrentSchemaVersion is the highest schema version this build writes.
func CurrentSchemaVersion() int {
	return len(indexMigrations) - 1
}

// GetIndexSchemaVersion returns the current index schema version
func GetIndexSchemaVersion(db *sql.DB) (int, error) {
	var version int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	err := row.Scan(&version)
	return version, err
}

// SaveScan stores a completed scan artifact with all of its endpoints and
// parameters in a single transaction.
func SaveScan(db *sql.DB, art *model.ScanArtifact) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO scans
        (scan_id, repository, root, commit_hash, started_at, completed_at, files_scanned, endpoint_count, declarations_seen, dropped)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		art.ScanID, art.Repository, art.Root, art.CommitHash,
		art.StartedAt, art.CompletedAt,
		art.Result.FilesScanned, art.Result.EndpointCount, art.Result.DeclarationsSeen, art.Result.Dropped)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	epStmt, err := tx.PrepareContext(ctx, `INSERT INTO endpoints
        (scan_id, method, path, file, line, framework, handler)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare endpoint insert: %w", err)
	}
	defer func() { _ = epStmt.Close() }()

	paramStmt, err := tx.PrepareContext(ctx, `INSERT INTO params
        (endpoint_id, position, name, kind, identifier)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare param insert: %w", err)
	}
	defer func() { _ = paramStmt.Close() }()

	for _, ep := range art.Result.Endpoints {
		res, err := epStmt.ExecContext(ctx, art.ScanID, ep.Method, ep.Path, ep.File, ep.Line, ep.Framework, ep.Handler)
		if err != nil {
			return fmt.Errorf("insert endpoint %s %s: %w", ep.Method, ep.Path, err)
		}
		epID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("endpoint id: %w", err)
		}
		for i, p := range ep.Parameters {
			if _, err := paramStmt.ExecContext(ctx, epID, i, p.Name, string(p.Kind), p.Identifier); err != nil {
				return fmt.Errorf("insert param %s: %w", p.Name, err)
			}
		}
	}
	return tx.Commit()
}

// LatestScan returns the most recent scan for the given repository, or nil if
// the repository has never been scanned.
func LatestScan(db *sql.DB, repository string) (*ScanSummary, error) {
	row := db.QueryRowContext(context.Background(), `SELECT
        scan_id, repository, root, commit_hash, started_at, completed_at,
        files_scanned, endpoint_count, declarations_seen, dropped
        FROM scans WHERE repository = ? ORDER BY completed_at DESC LIMIT 1`, repository)

	var s ScanSummary
	var startedAt, completedAt string
	err := row.Scan(&s.ScanID, &s.Repository, &s.Root, &s.CommitHash, &startedAt, &completedAt,
		&s.FilesScanned, &s.EndpointCount, &s.DeclarationsSeen, &s.Dropped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest scan: %w", err)
	}
	if s.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if s.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	return &s, nil
}

// EndpointsForScan loads the stored endpoints of a scan, parameters included,
// ordered by file then line.
func EndpointsForScan(db *sql.DB, scanID string) ([]extract.Endpoint, error) {
	ctx := context.Background()
	rows, err := db.QueryContext(ctx, `SELECT id, method, path, file, line, framework, handler
        FROM endpoints WHERE scan_id = ? ORDER BY file, line, method, path`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query endpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var endpoints []extract.Endpoint
	var ids []int64
	for rows.Next() {
		var id int64
		var ep extract.Endpoint
		if err := rows.Scan(&id, &ep.Method, &ep.Path, &ep.File, &ep.Line, &ep.Framework, &ep.Handler); err != nil {
			return nil, fmt.Errorf("scan endpoint row: %w", err)
		}
		ids = append(ids, id)
		endpoints = append(endpoints, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		params, err := paramsForEndpoint(db, id)
		if err != nil {
			return nil, err
		}
		endpoints[i].Parameters = params
	}
	return endpoints, nil
}

func paramsForEndpoint(db *sql.DB, endpointID int64) ([]extract.Parameter, error) {
	rows, err := db.QueryContext(context.Background(), `SELECT name, kind, identifier
        FROM params WHERE endpoint_id = ? ORDER BY position`, endpointID)
	if err != nil {
		return nil, fmt.Errorf("query params: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var params []extract.Parameter
	for rows.Next() {
		var p extract.Parameter
		var kind string
		if err := rows.Scan(&p.Name, &kind, &p.Identifier); err != nil {
			return nil, fmt.Errorf("scan param row: %w", err)
		}
		p.Kind = extract.ParamKind(kind)
		params = append(params, p)
	}
	return params, rows.Err()
}
