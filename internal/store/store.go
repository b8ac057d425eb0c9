package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/dailyquest/internal/progression"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const tableName = "progression"

const createTable = `CREATE TABLE IF NOT EXISTS progression (
	user_id    TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store is a Remote backed by a SQLite database.
type Store struct {
	db *sql.DB
}

var (
	_ Remote = (*Store)(nil)
	_ Lister = (*Store)(nil)
)

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the progression table.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps pragmas in effect for every statement.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, userID string) (*progression.Record, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("version", "data").
		From(entsql.Table(tableName)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		version int64
		data    string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}

	rec, err := decodeRecord([]byte(data))
	if err != nil {
		return nil, err
	}
	rec.Version = version
	return rec, nil
}

func (s *Store) Update(ctx context.Context, userID string, expectedVersion int64, rec *progression.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Update(tableName).
		Set("version", rec.Version).
		Set("data", string(data)).
		Set("updated_at", time.Now().UTC().Format(time.RFC3339Nano)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("version", expectedVersion),
		)).
		Query()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: either the row is gone or its version moved on.
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return ErrConflict
}

func (s *Store) Create(ctx context.Context, rec *progression.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableName).
		Columns("user_id", "version", "data", "updated_at").
		Values(rec.UserID, rec.Version, string(data), time.Now().UTC().Format(time.RFC3339Nano)).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListUserIDs returns every stored user ID in ascending order.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("user_id").
		From(entsql.Table(tableName)).
		OrderBy("user_id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Now returns the database clock in UTC.
func (s *Store) Now(ctx context.Context) (time.Time, error) {
	var raw string
	if err := s.db.QueryRowContext(ctx, `SELECT strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("query clock: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// applyPragmas configures SQLite for a small, write-light workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DAILYQUEST_DB environment variable
// 2. $XDG_DATA_HOME/dailyquest/dailyquest.db
// 3. ~/.local/share/dailyquest/dailyquest.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DAILYQUEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "dailyquest", "dailyquest.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
