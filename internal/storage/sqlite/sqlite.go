// Package sqlite implements storage.Storage on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	// Pure-Go SQLite driver (wazero-hosted), registered as "sqlite3".
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/untoldecay/mentor/internal/storage"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// busyTimeoutMs is how long a statement waits on another writer's lock
// before failing with SQLITE_BUSY.
const busyTimeoutMs = 5000

var _ storage.Storage = (*SQLiteStorage)(nil)

// SQLiteStorage implements the storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// Option configures New.
type Option func(*options)

type options struct {
	legacyLocation *time.Location
}

// WithLegacyLocation sets the zone that timestamps in a database written by
// the original tool are read in. Those stored local wall-clock time; they are
// rewritten to UTC once, the first time the file is opened. The default is
// time.Local.
func WithLegacyLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.legacyLocation = loc
		}
	}
}

// New opens (creating if needed) the database at path and ensures the schema.
func New(ctx context.Context, path string, opts ...Option) (*SQLiteStorage, error) {
	o := options{legacyLocation: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	connStr, err := sqliteConnString(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// Every new connection to :memory: is a different database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	if err := initSchema(ctx, db, o.legacyLocation); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db, dbPath: path}, nil
}

// sqliteConnString builds a file: URI carrying the per-connection pragmas.
func sqliteConnString(path string) (string, error) {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))

	if path == MemoryPath {
		return "file::memory:?" + q.Encode(), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	q.Add("_pragma", "journal_mode(wal)")
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: q.Encode()}
	return u.String(), nil
}

// Close closes the database connection pool.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the path the store was opened with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// UnderlyingDB returns the underlying *sql.DB connection.
// WARNING: Direct database access bypasses the conflict rule. Use with caution.
func (s *SQLiteStorage) UnderlyingDB() *sql.DB {
	return s.db
}

// withImmediateTx runs fn inside BEGIN IMMEDIATE on a dedicated connection.
// The connection is returned to the pool and the transaction is committed or
// rolled back on every path out.
func (s *SQLiteStorage) withImmediateTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin immediate transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
