// Package storage provides SQLite-based persistence for save data.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// Save data is a flat key-value table partitioned by namespace. The local
// player uses the empty namespace; every SSH user gets their own, so one
// database can hold many independent save files.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/sisyphus/internal/persist"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store manages the SQLite database connection for save data.
type Store struct {
	db *sql.DB
}

// Item is one stored key-value pair.
type Item struct {
	Namespace string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// SessionRecord describes one finished play session.
type SessionRecord struct {
	ID        string // Session UUID
	User      string
	Remote    string
	Best      int // Best progress reached during the session
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the session lasted.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != MemoryPath {
		// Expand ~ to home directory
		if dbPath != "" && dbPath[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}

		// Create parent directories
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Every pooled connection to :memory: is a separate database, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv_items (
			namespace TEXT NOT NULL DEFAULT '',
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user TEXT NOT NULL,
			remote TEXT NOT NULL DEFAULT '',
			best INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Namespace returns a backend over the keys of one namespace.
func (s *Store) Namespace(name string) *Namespace {
	return &Namespace{store: s, name: name}
}

// Local returns the backend of the local player.
func (s *Store) Local() *Namespace {
	return s.Namespace("")
}

// Namespaces lists every namespace that holds at least one key.
func (s *Store) Namespaces() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT namespace FROM kv_items ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query namespaces: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return names, nil
}

// Items returns every item of a namespace ordered by key.
func (s *Store) Items(namespace string) ([]Item, error) {
	rows, err := s.db.Query(
		`SELECT namespace, key, value, updated_at
		 FROM kv_items
		 WHERE namespace = ?
		 ORDER BY key`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var updatedAt any
		if err := rows.Scan(&it.Namespace, &it.Key, &it.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		it.UpdatedAt = parseTime(updatedAt)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return items, nil
}

// SaveSession records a finished play session, local or over SSH.
func (s *Store) SaveSession(r SessionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, user, remote, best, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.User, r.Remote, r.Best, r.StartedAt.UTC(), r.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// RecentSessions returns the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, user, remote, best, started_at, ended_at
		 FROM sessions
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var started, ended any
		if err := rows.Scan(&r.ID, &r.User, &r.Remote, &r.Best, &started, &ended); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.EndedAt = parseTime(ended)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// parseTime handles both time.Time and the string forms SQLite returns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// Namespace is a persist.Backend over one namespace of a Store.
type Namespace struct {
	store *Store
	name  string
}

// Name returns the namespace name; the local player's is empty.
func (n *Namespace) Name() string {
	return n.name
}

// GetItem implements persist.Backend.
func (n *Namespace) GetItem(key string) (string, bool, error) {
	var value string
	err := n.store.db.QueryRow(
		`SELECT value FROM kv_items WHERE namespace = ? AND key = ?`,
		n.name, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem implements persist.Backend.
func (n *Namespace) SetItem(key, value string) error {
	_, err := n.store.db.Exec(
		`INSERT INTO kv_items (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (namespace, key) DO UPDATE
		 SET value = excluded.value, updated_at = excluded.updated_at`,
		n.name, key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// RemoveItem implements persist.Backend.
func (n *Namespace) RemoveItem(key string) error {
	_, err := n.store.db.Exec(
		`DELETE FROM kv_items WHERE namespace = ? AND key = ?`,
		n.name, key,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot remove %s: %w", key, err)
	}
	return nil
}

// Keys implements persist.Backend.
func (n *Namespace) Keys() ([]string, error) {
	rows, err := n.store.db.Query(
		`SELECT key FROM kv_items WHERE namespace = ? ORDER BY key`,
		n.name,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return keys, nil
}

// Clear removes every key of the namespace.
func (n *Namespace) Clear() error {
	if _, err := n.store.db.Exec(`DELETE FROM kv_items WHERE namespace = ?`, n.name); err != nil {
		return fmt.Errorf("storage: cannot clear namespace %q: %w", n.name, err)
	}
	return nil
}

// Ensure Namespace implements persist.Backend
var _ persist.Backend = (*Namespace)(nil)
