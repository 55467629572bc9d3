// Package store persists scan verdicts and admin users in SQLite. The scan
// audit trail is fire-and-forget from the scan path's point of view: a write
// failure is logged by the caller and never surfaced to the scan response.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/safelinkedu/safelink/internal/logging"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout is fixed width so stored timestamps order lexically. RFC3339Nano
// drops trailing fraction zeros, which breaks string ordering for rows
// created within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrScanNotFound  = errors.New("scan not found")
	ErrAdminNotFound = errors.New("admin user not found")
	ErrAdminExists   = errors.New("admin user already exists")
)

// Store wraps the SQLite database holding scan records and admin users.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// New opens (or creates) the database at path and applies the schema.
func New(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		return nil, errors.New("store: nil logger")
	}
	if path == "" {
		return nil, errors.New("store: empty database path")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("store initialized", logging.Field{Key: "path", Value: path})
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
