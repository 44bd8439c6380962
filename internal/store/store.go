// Package store persists projects, tasks and the event log in SQL (SQLite by default,
// Postgres when configured).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	workspaceDirName = ".tasktree"
	sqliteFileName   = "tasktree.sqlite"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver accepts the names used in config files and env vars.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q (expected sqlite|postgres)", s)
	}
}

var (
	ErrNotFound = errors.New("not found")
	ErrNoDSN    = errors.New("postgres driver selected but no DSN configured")
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.kind, e.id) }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind, id string) error { return notFoundError{kind: kind, id: id} }

// Options select where a Store keeps its data.
type Options struct {
	Driver Driver
	// Dir is the workspace directory; the SQLite file lives inside it.
	Dir string
	// DSN is the Postgres connection string.
	DSN string
}

type Store struct {
	Dir string

	db      *sql.DB
	dialect dialect
}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the sql.Open used by Open and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Open connects to the configured database and applies migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	d := dialectFor(opts.Driver)

	var dsn string
	switch d.driver {
	case DriverPostgres:
		dsn = strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, ErrNoDSN
		}
	default:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, errors.New("open sqlite: empty workspace dir")
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		dsn = filepath.Join(opts.Dir, sqliteFileName)
	}

	openMu.Lock()
	db, err := sqlOpen(d.sqlDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == DriverSQLite {
		// One connection keeps the pragmas below in effect for every statement.
		db.SetMaxOpenConns(1)
	}
	for _, p := range d.pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &Store{Dir: opts.Dir, db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", d.driver, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Driver() Driver { return s.dialect.driver }

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(q), args...)
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .tasktree directory above the working directory, or
// ./.tasktree when there is none.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}
