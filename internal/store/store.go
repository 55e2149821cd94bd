// Package store persists chat sessions for the HTTP API in SQLite. Each
// session is an ordered list of user and assistant turns that the server
// replays as history on the next question.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/54b3r/supportrag-go/internal/assistant"
)

// SessionStore persists and retrieves chat turns keyed by session ID.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Append persists a single turn for the session.
	Append(ctx context.Context, sessionID string, msg assistant.ChatMessage) error
	// Recent returns the most recent n turns of the session, oldest first.
	// If fewer than n exist, all are returned.
	Recent(ctx context.Context, sessionID string, n int) ([]assistant.ChatMessage, error)
	// Delete removes every turn of the session.
	Delete(ctx context.Context, sessionID string) error
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a SessionStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath resolves ~/.supportrag/history.db, creating the directory if
// needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".supportrag")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at path and creates the schema.
// Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// A single connection avoids SQLITE_BUSY and keeps ":memory:" databases
	// alive for the life of the store.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS messages (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   TEXT    NOT NULL,
    role         TEXT    NOT NULL CHECK(role IN ('user','assistant')),
    content      TEXT    NOT NULL,
    sources      TEXT    NOT NULL DEFAULT '[]',
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_messages_session_id
    ON messages (session_id, id);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists a single turn. Only user and assistant roles are accepted.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, msg assistant.ChatMessage) error {
	if msg.Role != assistant.RoleUser && msg.Role != assistant.RoleAssistant {
		return fmt.Errorf("store: append: unsupported role %q", msg.Role)
	}
	sources := msg.Sources
	if sources == nil {
		sources = []assistant.Source{}
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("store: append: encode sources: %w", err)
	}

	const q = `INSERT INTO messages (session_id, role, content, sources, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, sessionID, msg.Role, msg.Content, string(raw), time.Now().Unix()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent selects the newest n turns and returns them oldest-first.
func (s *SQLiteStore) Recent(ctx context.Context, sessionID string, n int) ([]assistant.ChatMessage, error) {
	const q = `
SELECT role, content, sources FROM (
    SELECT id, role, content, sources
    FROM   messages
    WHERE  session_id = ?
    ORDER  BY id DESC
    LIMIT  ?
) ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, q, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var msgs []assistant.ChatMessage
	for rows.Next() {
		var m assistant.ChatMessage
		var raw string
		if err := rows.Scan(&m.Role, &m.Content, &raw); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &m.Sources); err != nil {
			return nil, fmt.Errorf("store: recent decode sources: %w", err)
		}
		if len(m.Sources) == 0 {
			m.Sources = nil
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return msgs, nil
}

// Delete removes every turn of the session. Deleting an unknown session is
// not an error.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
