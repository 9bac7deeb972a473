package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS client (
	id TEXT PRIMARY KEY,
	secret TEXT NOT NULL,
	label TEXT NOT NULL,
	scopes TEXT NOT NULL, -- JSON array
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_code (
	code TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	scopes TEXT NOT NULL, -- JSON array
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (username) REFERENCES user(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS schedule (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	frequency TEXT NOT NULL,
	hour INTEGER NOT NULL DEFAULT 0,
	minute INTEGER NOT NULL DEFAULT 0,
	day_of_week INTEGER,
	day_of_month INTEGER,
	retention_days INTEGER NOT NULL DEFAULT 0,
	enabled INTEGER NOT NULL DEFAULT 1,
	last_run_at DATETIME,
	next_run_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS job (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	command_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	resource_id TEXT,
	status TEXT NOT NULL,
	output TEXT,
	error TEXT,
	start_time DATETIME NOT NULL,
	end_time DATETIME
);

CREATE TABLE IF NOT EXISTS backup (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	database_file TEXT,
	database_size INTEGER,
	media_file TEXT,
	media_size INTEGER,
	compress INTEGER NOT NULL DEFAULT 1,
	exclude_logs INTEGER NOT NULL DEFAULT 0,
	schedule_id INTEGER,
	created_by TEXT,
	error TEXT,
	created_at DATETIME NOT NULL,
	started_at DATETIME,
	completed_at DATETIME,
	FOREIGN KEY (schedule_id) REFERENCES schedule(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS restore (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	backup_id TEXT,
	uploaded_database_file TEXT,
	uploaded_media_file TEXT,
	overwrite INTEGER NOT NULL DEFAULT 0,
	snapshot_first INTEGER NOT NULL DEFAULT 1,
	safety_backup_id TEXT,
	created_by TEXT,
	error TEXT,
	created_at DATETIME NOT NULL,
	started_at DATETIME,
	completed_at DATETIME,
	FOREIGN KEY (backup_id) REFERENCES backup(id) ON DELETE SET NULL,
	FOREIGN KEY (safety_backup_id) REFERENCES backup(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	backup_dir TEXT NOT NULL,
	dump_binary TEXT NOT NULL DEFAULT '',
	client_binary TEXT NOT NULL DEFAULT '',
	db_host TEXT NOT NULL DEFAULT 'localhost',
	db_port INTEGER NOT NULL DEFAULT 3306,
	db_user TEXT NOT NULL DEFAULT '',
	db_password TEXT NOT NULL DEFAULT '',
	db_name TEXT NOT NULL DEFAULT '',
	compression_level INTEGER NOT NULL DEFAULT 6,
	default_retention_days INTEGER NOT NULL DEFAULT 30,
	notify_email TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_backup_status ON backup(status);
CREATE INDEX IF NOT EXISTS idx_backup_schedule_id ON backup(schedule_id);
CREATE INDEX IF NOT EXISTS idx_backup_created_at ON backup(created_at);
CREATE INDEX IF NOT EXISTS idx_restore_status ON restore(status);
CREATE INDEX IF NOT EXISTS idx_job_command_id ON job(command_id);
CREATE INDEX IF NOT EXISTS idx_job_status ON job(status);
CREATE INDEX IF NOT EXISTS idx_auth_code_expires_at ON auth_code(expires_at);
`

type DB struct {
	*sqlx.DB
}

func New(dbPath string) (*DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// WAL allows the API server and a concurrently running CLI command to
	// share the records store.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// NullString helper for optional string fields
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt64 helper for optional int64 fields
func NullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// NullInt helper for optional int fields
func NullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// NullTime helper for optional time fields
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
