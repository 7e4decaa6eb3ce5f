package recent

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the most recently tested target URLs so the URL inputs
// can offer them back. Local-only; nothing here talks to the backend.
type Store struct {
	db *sql.DB
}

// Entry is one remembered target URL.
type Entry struct {
	URL      string
	LastUsed time.Time
	UseCount int
}

// NewStore opens (and if needed creates) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recent_urls (
		url TEXT PRIMARY KEY,
		last_used DATETIME NOT NULL,
		use_count INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_recent_urls_last_used ON recent_urls(last_used DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Touch records that url was just submitted, creating or refreshing
// its entry.
func (s *Store) Touch(url string) error {
	if url == "" {
		return nil
	}

	query := `
		INSERT INTO recent_urls (url, last_used, use_count) VALUES (?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET last_used = excluded.last_used, use_count = use_count + 1
	`
	timestamp := time.Now().Local().Format("2006-01-02 15:04:05")
	if _, err := s.db.Exec(query, url, timestamp); err != nil {
		return fmt.Errorf("failed to record url: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recently used first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT url, last_used, use_count FROM recent_urls
		ORDER BY last_used DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent urls: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var lastUsed string
		if err := rows.Scan(&e.URL, &lastUsed, &e.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan recent url: %w", err)
		}
		e.LastUsed, _ = time.ParseInLocation("2006-01-02 15:04:05", lastUsed, time.Local)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
