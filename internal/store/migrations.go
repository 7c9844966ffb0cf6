package store

import (
	"fmt"
)

func (s *Store) migrate() error {
	if err := s.migrateV1(); err != nil {
		return err
	}
	return s.migrateV2()
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS automation_sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		story      TEXT NOT NULL,
		plan       TEXT NOT NULL,
		settings   TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		is_active  INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON automation_sessions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_active ON automation_sessions(user_id, is_active);

	CREATE TABLE IF NOT EXISTS activity_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		action     TEXT NOT NULL,
		target     TEXT,
		result     TEXT NOT NULL,
		metadata   TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_log(user_id, created_at);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', '1');
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v1: %w", err)
	}
	return nil
}

// migrateV2 adds the schema-level guard for the one-active-session-per-user
// invariant. The controller checks explicitly inside its start transaction;
// the partial unique index catches anything that slips past it.
func (s *Store) migrateV2() error {
	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil || version >= "2" {
		return nil
	}

	schema := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON automation_sessions(user_id) WHERE is_active = 1;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration v2: %w", err)
	}

	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', '2')`); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}
