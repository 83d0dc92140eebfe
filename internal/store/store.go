// ABOUTME: Core SQLite store backing the panel host: records, settings and request logs.
// ABOUTME: Handles database initialization, versioned migrations and connection management.

package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // request_logs table
	MigrationV2 = 2 // settings table
	MigrationV3 = 3 // records table for model data
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV3

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// An in-memory database only lives as long as its single connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	if err := s.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	log.Printf("Database schema version: %d, target version: %d", currentVersion, CurrentSchemaVersion)

	migrations := []struct {
		version int
		apply   func() error
	}{
		{MigrationV1, s.migrateV1},
		{MigrationV2, s.migrateV2},
		{MigrationV3, s.migrateV3},
	}

	for _, m := range migrations {
		if currentVersion >= m.version {
			continue
		}
		if err := m.apply(); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations tracking table
func (s *Store) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	return err
}

// getCurrentMigrationVersion retrieves the current schema version
func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// recordMigration records a completed migration
func (s *Store) recordMigration(version int, description string) error {
	_, err := s.db.Exec(`
		INSERT INTO schema_migrations (version, description)
		VALUES (?, ?)
	`, version, description)
	return err
}

func (s *Store) applySchema(version int, description, schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if err := s.recordMigration(version, description); err != nil {
		return err
	}
	log.Printf("Applied migration v%d: %s", version, description)
	return nil
}

// migrateV1 creates the request_logs table and indexes
func (s *Store) migrateV1() error {
	return s.applySchema(MigrationV1, "Create request_logs table and indexes", `
	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		model_name TEXT DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		duration_ms INTEGER,
		user_id TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_body TEXT,
		response_body TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path, status_code);
	CREATE INDEX IF NOT EXISTS idx_request_logs_model_timestamp ON request_logs(model_name, timestamp DESC);
	`)
}

// migrateV2 creates the settings table holding JSON-encoded values
func (s *Store) migrateV2() error {
	return s.applySchema(MigrationV2, "Create settings table", `
	CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`)
}

// migrateV3 creates the records table holding model rows as JSON documents
func (s *Store) migrateV3() error {
	return s.applySchema(MigrationV3, "Create records table", `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_model_created ON records(model, created_at DESC);
	`)
}
