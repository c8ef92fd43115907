// Package storage owns the single database handle and the entry,
// credential, and session stores that execute through it. Exactly one OS
// process is expected to hold the database file open at a time.
package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/nhoffmann/punchout/internal/backup"
	"github.com/nhoffmann/punchout/internal/crypto"
	"github.com/nhoffmann/punchout/internal/migration"
	"github.com/nhoffmann/punchout/migrations"
)

// Store is the connection manager plus all persistence operations. The
// handle is opened lazily; concurrent first callers serialize through mu so
// schema setup runs exactly once per handle lifetime.
type Store struct {
	mu      sync.Mutex
	path    string
	db      *sql.DB
	ensured bool

	keyMu     sync.Mutex
	masterKey string
}

// New creates a store for the given database file path. Nothing is opened
// until the first operation needs the handle.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the current database file path.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath closes any open handle and points the store at a new file. The
// next operation re-bootstraps schema and migrations against it.
func (s *Store) SetPath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		s.db = nil
	}
	s.ensured = false
	s.path = path
	return nil
}

// Close releases the handle. Safe to call repeatedly or when nothing is
// open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.ensured = false
	return err
}

// Handle returns the live database handle, opening the file and running
// migrations on first use.
func (s *Store) Handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil && s.ensured {
		return s.db, nil
	}

	if err := s.openLocked(); err != nil {
		return nil, err
	}

	runner := migration.NewRunner(s.db, s.migrationFS(), backup.NewManager(s.path))
	if _, err := runner.Apply(nil); err != nil {
		// A stale or half-migrated schema cannot be trusted
		s.db.Close()
		s.db = nil
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	s.ensured = true
	return s.db, nil
}

// Migrate opens the database if needed and runs pending migrations,
// reporting the structured result. Used by the migrate CLI command; normal
// operations migrate silently via Handle.
func (s *Store) Migrate(logFn func(string)) (migration.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		if err := s.openLocked(); err != nil {
			return migration.Result{}, err
		}
	}

	runner := migration.NewRunner(s.db, s.migrationFS(), backup.NewManager(s.path))
	result, err := runner.Apply(logFn)
	if err != nil {
		s.db.Close()
		s.db = nil
		s.ensured = false
		return result, fmt.Errorf("schema migration failed: %w", err)
	}

	s.ensured = true
	return result, nil
}

// openLocked opens the database file and configures the single-writer
// connection. Callers must hold mu.
func (s *Store) openLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &ConnectionError{Path: s.path, Err: err}
	}

	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return &ConnectionError{Path: s.path, Err: err}
	}

	// Single writer: one connection, so statements never contend in-process
	// and WAL readers overlap the writer at the file level.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return &ConnectionError{Path: s.path, Err: err}
	}

	s.db = db
	return nil
}

func (s *Store) migrationFS() fs.FS {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded FS always contains the sqlite directory
		panic(fmt.Sprintf("embedded migrations missing: %v", err))
	}
	return sub
}

// resolveMasterKey caches the credential-encryption master key for the
// lifetime of the store.
func (s *Store) resolveMasterKey() (string, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if s.masterKey != "" {
		return s.masterKey, nil
	}
	key, err := crypto.ResolveMasterKey()
	if err != nil {
		return "", err
	}
	s.masterKey = key
	return key, nil
}

func dsn(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
}
