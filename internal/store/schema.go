package store

import (
	"context"
	"time"
)

// Both dialects accept this DDL. Dates are YYYY-MM-DD text; booleans are integers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		archived INTEGER NOT NULL DEFAULT 0,
		created_at_unixms BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		parent_id TEXT,
		order_key INTEGER NOT NULL,
		title TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at_unixms BIGINT NOT NULL,
		updated_at_unixms BIGINT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_order ON tasks(project_id, order_key);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		ts_unixms BIGINT NOT NULL,
		project_id TEXT NOT NULL,
		type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_unixms);`,
	`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, ts_unixms);`,
}

const schemaVersion = "1"

func (s *Store) migrate(ctx context.Context) error {
	for _, st := range schema {
		if _, err := s.exec(ctx, st); err != nil {
			return err
		}
	}
	var v string
	err := s.queryRow(ctx, `SELECT v FROM meta WHERE k = ?`, "schema_version").Scan(&v)
	if err == nil {
		return nil
	}
	_, err = s.exec(ctx, `INSERT INTO meta(k, v) VALUES(?, ?)`, "schema_version", schemaVersion)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toUnixMs(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromUnixMs(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
