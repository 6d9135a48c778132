package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Config holds database configuration.
type Config struct {
	// Driver specifies the database driver to use.
	// If empty, it is detected from the URL.
	Driver Driver

	// URL is the connection string for PostgreSQL and MySQL.
	URL string

	// SQLitePath is the path to the SQLite database file.
	SQLitePath string

	// MaxConns caps the pool size. Zero keeps the driver default.
	MaxConns int
}

// OpenFunc opens a connection for one driver.
type OpenFunc func(ctx context.Context, cfg Config) (Connection, error)

var (
	openersMu sync.RWMutex
	openers   = map[Driver]OpenFunc{}
)

// RegisterDriver registers the connection factory for a driver.
// Driver packages call it from init.
func RegisterDriver(d Driver, fn OpenFunc) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[d] = fn
}

// NewConnection creates a database connection based on configuration.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		d, ok := DetectDriver(cfg.URL)
		if !ok {
			return nil, fmt.Errorf("unsupported database url: %q", cfg.URL)
		}
		driver = d
	}

	openersMu.RLock()
	open, ok := openers[driver]
	openersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("database driver %s is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".gestaches", "data.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
