package database

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the process-wide store handle. It always points at the default
// manager's connection; ForceReopen refreshes it after bulk imports.
var DB *sql.DB

var defaultManager *Manager

// Manager owns a single lazily-opened SQLite handle. Bulk imports use
// Checkpoint and ForceReopen to guarantee that subsequent reads, including
// external readers of the file itself, observe the merged state.
type Manager struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the store file path backing this manager.
func (m *Manager) Path() string {
	return m.path
}

// Open returns the cached handle, creating it on first use.
func (m *Manager) Open() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked()
}

func (m *Manager) openLocked() (*sql.DB, error) {
	if m.db != nil {
		return m.db, nil
	}

	dsn := m.path
	if m.path != ":memory:" {
		dsn = m.path + "?_journal=WAL&_busy_timeout=10000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", m.path, err)
	}

	// One active connection; the engine's own locking serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	m.db = db
	return m.db, nil
}

// ForceReopen closes the cached handle and opens a fresh one, discarding any
// stale connection state left over from a bulk import.
func (m *Manager) ForceReopen() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		m.db.Close()
		m.db = nil
	}
	return m.openLocked()
}

// Checkpoint flushes the write-ahead log into the main store file so external
// readers see a single consistent file.
func (m *Manager) Checkpoint() error {
	db, err := m.Open()
	if err != nil {
		return err
	}
	_, err = db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return err
}

// Vacuum reorganizes the store file to reclaim space after mass deletes.
func (m *Manager) Vacuum() error {
	db, err := m.Open()
	if err != nil {
		return err
	}
	_, err = db.Exec("VACUUM;")
	return err
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// InitDB builds the default manager and opens the process-wide handle.
func InitDB() error {
	var dbPath string
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		dbPath = p
	} else if os.Getenv("TEST_DB") == "1" {
		dbPath = ":memory:"
	} else {
		dbPath = "./data.sqlite"
	}

	return SetDefault(NewManager(dbPath))
}

// SetDefault installs m as the default manager and points DB at its handle.
// Tests use this to run against a per-test store file.
func SetDefault(m *Manager) error {
	db, err := m.Open()
	if err != nil {
		return err
	}
	defaultManager = m
	DB = db
	return nil
}

// Default returns the manager installed by InitDB or SetDefault.
func Default() *Manager {
	return defaultManager
}

// ForceReopen recycles the default handle and refreshes DB.
func ForceReopen() error {
	if defaultManager == nil {
		return fmt.Errorf("database not initialized")
	}
	db, err := defaultManager.ForceReopen()
	if err != nil {
		return err
	}
	DB = db
	return nil
}
