package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/diogo/monachat/internal/config"
)

// Backend is a durable key/value record store
type Backend interface {
	// Get returns the record for key and whether it exists
	Get(key string) ([]byte, bool, error)
	// Set overwrites the record for key
	Set(key string, value []byte) error
	Close() error
}

// OpenBackend opens the backend named by kind inside dir
func OpenBackend(kind, dir string) (Backend, error) {
	switch kind {
	case "", config.StorageFile:
		return NewFileBackend(dir)
	case config.StorageSQLite:
		return NewSQLiteBackend(filepath.Join(dir, "monachat.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (available: %s)",
			kind, strings.Join(config.AvailableStorages(), ", "))
	}
}

// FileBackend stores each record as a JSON file named after its key
type FileBackend struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileBackend creates a file backend rooted at baseDir
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.baseDir, key+".json")
}

// Get implements Backend
func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements Backend
func (b *FileBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.WriteFile(b.path(key), value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close implements Backend
func (b *FileBackend) Close() error {
	return nil
}

// SQLiteBackend stores records in a single key/value table
type SQLiteBackend struct {
	conn *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	b := &SQLiteBackend{conn: conn}
	if err := b.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) init() error {
	_, err := b.conn.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Get implements Backend
func (b *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	var value string
	err := b.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set implements Backend
func (b *SQLiteBackend) Set(key string, value []byte) error {
	_, err := b.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close implements Backend
func (b *SQLiteBackend) Close() error {
	return b.conn.Close()
}
