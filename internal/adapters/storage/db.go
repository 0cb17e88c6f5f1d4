// Package storage owns the SQLite schema and its versioned migrations.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migration is a single schema step. Migrations are applied in order and
// recorded in schema_version.
type migration struct {
	version int
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, apply: migrateBaseline},
	{version: 2, apply: migrateSettingsEntryMargin},
}

// LatestSchemaVersion returns the version the database is migrated to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the current schema version, 0 for an untracked
// database.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version sql.NullInt64
	err = db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// MigrateDB brings the database up to the latest schema version.
// A file-backed database with pending migrations is backed up first.
//
// PRE: db is an open SQLite connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dsn string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 {
		if err := backupBeforeMigration(db, dsn); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// backupBeforeMigration snapshots a file-backed database with VACUUM INTO.
// In-memory databases are skipped.
func backupBeforeMigration(db *sql.DB, dsn string) error {
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(path, "mode=memory") {
		return nil
	}

	backup := fmt.Sprintf("%s.backup-%s", path, time.Now().UTC().Format("20060102T150405"))
	if _, err := db.Exec("VACUUM INTO ?", backup); err != nil {
		return fmt.Errorf("failed to back up database before migration: %w", err)
	}
	slog.Info("db_backup_created", "path", backup)
	return nil
}

// migrateBaseline creates the initial schema.
func migrateBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS operator (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		birthdate TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		registered_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reset_token (
		id TEXT PRIMARY KEY,
		operator_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (operator_id) REFERENCES operator(id)
	);

	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		birthdate TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		member_number TEXT NOT NULL UNIQUE,
		user_code TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		medical_certificate INTEGER NOT NULL DEFAULT 0,
		registered_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS member_access (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		access_date TEXT NOT NULL,
		access_time TEXT NOT NULL,
		device TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (member_id) REFERENCES member(id)
	);

	CREATE TABLE IF NOT EXISTS member_booking (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		booking_date TEXT NOT NULL,
		booking_time TEXT NOT NULL,
		has_access INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (member_id) REFERENCES member(id)
	);

	CREATE TABLE IF NOT EXISTS booking (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		member_name TEXT NOT NULL,
		machines TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notification (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT '',
		traffic_light TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		member_id TEXT NOT NULL DEFAULT '',
		member_name TEXT NOT NULL DEFAULT '',
		member_number TEXT NOT NULL DEFAULT '',
		booking_date TEXT NOT NULL DEFAULT '',
		booking_time TEXT NOT NULL DEFAULT '',
		missed_count INTEGER NOT NULL DEFAULT 0,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS processed_notification (
		key TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		max_capacity INTEGER NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS announcement (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_by TEXT NOT NULL,
		published_by TEXT,
		author_name TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT 'orange',
		pinned INTEGER NOT NULL DEFAULT 0,
		pinned_at TEXT,
		visible_from TEXT,
		visible_until TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		published_at TEXT
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		actor_email TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_booking_start ON booking(start_at);
	CREATE INDEX IF NOT EXISTS idx_member_booking_member ON member_booking(member_id);
	CREATE INDEX IF NOT EXISTS idx_member_access_member ON member_access(member_id);
	CREATE INDEX IF NOT EXISTS idx_notification_created ON notification(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
	`

	_, err := tx.Exec(schema)
	return err
}

// migrateSettingsEntryMargin adds the entry margin used when matching gym
// door check-ins to booked slots.
func migrateSettingsEntryMargin(tx *sql.Tx) error {
	_, err := tx.Exec("ALTER TABLE settings ADD COLUMN entry_margin_minutes INTEGER NOT NULL DEFAULT 0")
	return err
}
