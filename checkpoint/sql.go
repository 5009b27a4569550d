package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite3" driver name with database/sql. This is the
	// only SQL driver available anywhere in the retrieved corpus; a caller
	// wiring a networked engine (Postgres, MySQL) supplies their own driver
	// import and opens the *sql.DB themselves, then passes it to New.
	_ "github.com/mattn/go-sqlite3"
)

// Dialect controls the placeholder syntax SQLStore emits, since
// database/sql does not normalize it across drivers.
type Dialect int

const (
	// DialectQuestion uses "?" placeholders (SQLite, MySQL).
	DialectQuestion Dialect = iota
	// DialectDollar uses "$1", "$2", ... placeholders (PostgreSQL).
	DialectDollar
)

const checkpointRowID = 0

// createTableDDL matches the single-row relational shape: a fixed primary
// key row that Save upserts in place.
const createTableDDL = `CREATE TABLE IF NOT EXISTS indexer_checkpoint (
	id INTEGER PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLStore is a Store backed by any database/sql driver. It is generic
// over SQLite (the corpus's only vendored driver, via OpenSQLite) and any
// other driver the caller registers and opens themselves — PostgreSQL in
// particular, which the corpus carries no driver for.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (creating if necessary) a SQLite-backed checkpoint
// store at path and ensures the checkpoint table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	store := New(db, DialectQuestion)
	if err := store.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already-open *sql.DB (for example a PostgreSQL pool opened
// by the caller with their own driver) as a Store. The caller is
// responsible for calling EnsureTable or relying on a prior migration
// before first use.
func New(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// EnsureTable creates the indexer_checkpoint table if it does not exist.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	return s.ensureTable(ctx)
}

func (s *SQLStore) ensureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableDDL)
	return err
}

func (s *SQLStore) placeholder(n int) string {
	if s.dialect == DialectDollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Load returns the persisted watermark, or ok=false if the table is empty.
func (s *SQLStore) Load(ctx context.Context) (uint64, bool, error) {
	query := fmt.Sprintf("SELECT last_processed_block FROM indexer_checkpoint WHERE id = %s", s.placeholder(1))
	var block int64
	err := s.db.QueryRowContext(ctx, query, checkpointRowID).Scan(&block)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(block), true, nil
}

// Save upserts the single checkpoint row.
func (s *SQLStore) Save(ctx context.Context, block uint64) error {
	query := fmt.Sprintf(
		`INSERT INTO indexer_checkpoint (id, last_processed_block, updated_at) VALUES (%s, %s, %s)
		 ON CONFLICT (id) DO UPDATE SET last_processed_block = excluded.last_processed_block, updated_at = excluded.updated_at`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3),
	)
	_, err := s.db.ExecContext(ctx, query, checkpointRowID, int64(block), time.Now())
	return err
}

// Close closes the underlying *sql.DB.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
