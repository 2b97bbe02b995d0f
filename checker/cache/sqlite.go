package cache

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS module_cache (
	module TEXT PRIMARY KEY,
	source_hash TEXT NOT NULL,
	payload BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

const (
	selectEntry = "SELECT payload FROM module_cache WHERE module = ?"
	upsertEntry = `INSERT INTO module_cache (module, source_hash, payload) VALUES (?, ?, ?)
ON CONFLICT(module) DO UPDATE SET source_hash = excluded.source_hash, payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`
)

// SQLiteStore keeps entries in a sqlite table
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a sqlite cache database
func OpenSQLite(path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Debugw("opening cache database", "path", path)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cache database %s", path)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Infow("cache database opened", "path", path)
	return store, nil
}

// NewSQLiteStore creates a store on an open database, creating the table if needed
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to create cache table")
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the entry of a module, nil when absent
func (s *SQLiteStore) Get(ctx context.Context, module string) (*Entry, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectEntry, module).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load cache entry %s", module)
	}
	return decode(module, payload)
}

// Put stores an entry
func (s *SQLiteStore) Put(ctx context.Context, entry *Entry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	if _, err = s.db.ExecContext(ctx, upsertEntry, entry.Module, formatHash(entry.SourceHash), data); err != nil {
		return errors.Wrapf(err, "failed to store cache entry %s", entry.Module)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
