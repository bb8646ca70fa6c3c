// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions to a local SQLite database and
// exports them to portable formats.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/elastui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrNotFound      = errors.New("session not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	position   INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	reasoning  TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	timestamp  TEXT NOT NULL,
	PRIMARY KEY (session_id, id)
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, position);

CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const kvCurrentSession = "current_session"

// =============================================================================
// SESSION DATABASE
// =============================================================================

// SessionDB is the durable store behind the in-memory session store. It
// implements session.Persister: the whole session list is written through on
// every mutation and read back once at startup.
//
// Chat history is small (a desktop tool, at most a few hundred sessions), so
// Save rewrites the full state in one transaction rather than tracking
// dirty rows.
type SessionDB struct {
	db *sql.DB
}

// DefaultPath returns the default database location, ~/.elastui/sessions.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".elastui", "sessions.db"), nil
}

// Open opens (creating if necessary) the session database at path.
func Open(path string) (*SessionDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SessionDB{db: db}, nil
}

// Close releases the database handle.
func (s *SessionDB) Close() error {
	return s.db.Close()
}

// =============================================================================
// PERSISTER IMPLEMENTATION
// =============================================================================

// Save writes the full session list and current session id in one
// transaction.
func (s *SessionDB) Save(sessions []*model.Session, currentID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	sessStmt, err := tx.Prepare(`INSERT INTO sessions (id, title, created_at, updated_at, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer sessStmt.Close()

	msgStmt, err := tx.Prepare(`INSERT INTO messages (session_id, id, position, role, content, reasoning, error, elapsed_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer msgStmt.Close()

	for pos, sess := range sessions {
		if _, err := sessStmt.Exec(
			sess.ID,
			sess.Title,
			sess.CreatedAt.Format(time.RFC3339Nano),
			sess.UpdatedAt.Format(time.RFC3339Nano),
			pos,
		); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}

		for mpos := range sess.Messages {
			msg := &sess.Messages[mpos]
			if _, err := msgStmt.Exec(
				sess.ID,
				msg.ID,
				mpos,
				string(msg.Role),
				msg.Content,
				msg.Reasoning,
				msg.Err,
				msg.ElapsedMS,
				msg.Timestamp.Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("%w: %v", ErrDatabaseError, err)
			}
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		kvCurrentSession, currentID,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return tx.Commit()
}

// Load reads back every session in stored order plus the current session id.
// The streaming flag is deliberately not persisted: a message rehydrated
// after a crash is final by definition.
func (s *SessionDB) Load() ([]*model.Session, string, error) {
	rows, err := s.db.Query(`SELECT id, title, created_at, updated_at FROM sessions ORDER BY position`)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var sess model.Session
		var created, updated string
		if err := rows.Scan(&sess.ID, &sess.Title, &created, &updated); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, sess := range sessions {
		if err := s.loadMessages(sess); err != nil {
			return nil, "", err
		}
	}

	var currentID string
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, kvCurrentSession).Scan(&currentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return sessions, currentID, nil
}

// loadMessages fills in the message list for one session.
func (s *SessionDB) loadMessages(sess *model.Session) error {
	rows, err := s.db.Query(
		`SELECT id, role, content, reasoning, error, elapsed_ms, timestamp FROM messages WHERE session_id = ? ORDER BY position`,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role, ts string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.Reasoning, &msg.Err, &msg.ElapsedMS, &ts); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		sess.Messages = append(sess.Messages, msg)
	}
	return rows.Err()
}
