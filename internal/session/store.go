// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/jeranaias/elastui/internal/model"
)

// =============================================================================
// PERSISTENCE INTERFACE
// =============================================================================

// Persister is the durable storage boundary for the store. The SQLite
// implementation lives in internal/storage; tests use fakes.
type Persister interface {
	// Save writes the full session list and the current session id.
	Save(sessions []*model.Session, currentID string) error

	// Load returns the persisted sessions (most recently created first) and
	// the current session id.
	Load() ([]*model.Session, string, error)
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store owns every Session and Message in the application. All mutation goes
// through its API; each mutation replaces the affected Session with a fresh
// clone, so a *model.Session obtained from the store is an immutable
// snapshot and observers detect change by pointer identity.
//
// The store is safe for concurrent use. Subscribers are invoked after the
// mutation commits, outside the lock.
type Store struct {
	mu        sync.RWMutex
	sessions  []*model.Session // most recently created first
	currentID string

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int

	persister  Persister // optional
	persistErr error
}

// NewStore creates an empty store without persistence.
func NewStore() *Store {
	return &Store{subscribers: make(map[int]func())}
}

// NewStoreWithPersister creates a store backed by p and rehydrates its state.
// A load failure leaves the store empty; the error is retained and available
// through PersistErr.
func NewStoreWithPersister(p Persister) *Store {
	s := &Store{
		subscribers: make(map[int]func()),
		persister:   p,
	}

	sessions, currentID, err := p.Load()
	if err != nil {
		s.persistErr = err
		return s
	}
	s.sessions = sessions
	if s.findLocked(currentID) != -1 {
		s.currentID = currentID
	}
	return s
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to run after every committed mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// notify invokes all subscribers. Must be called without holding s.mu.
func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// CreateSession adds a new session, makes it current, and returns its
// snapshot.
func (s *Store) CreateSession(title string) *model.Session {
	sess := model.NewSession(title)

	s.mu.Lock()
	// Newest first, matching the list ordering contract.
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return sess
}

// DeleteSession removes a session. Deleting an unknown id is a no-op.
// Deleting the current session promotes the newest remaining session.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	idx := s.findLocked(id)
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// SetCurrentSession switches the current session. Unknown ids are ignored.
func (s *Store) SetCurrentSession(id string) {
	s.mu.Lock()
	if s.findLocked(id) == -1 {
		s.mu.Unlock()
		return
	}
	s.currentID = id
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// CurrentSession returns the current session snapshot, or nil.
func (s *Store) CurrentSession() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findLocked(s.currentID)
	if idx == -1 {
		return nil
	}
	return s.sessions[idx]
}

// CurrentID returns the id of the current session, or "".
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// GetSession returns the snapshot for id, or nil.
func (s *Store) GetSession(id string) *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findLocked(id)
	if idx == -1 {
		return nil
	}
	return s.sessions[idx]
}

// ListSessions returns metadata for all sessions, most recently created
// first.
func (s *Store) ListSessions() []model.SessionMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]model.SessionMeta, 0, len(s.sessions))
	for _, sess := range s.sessions {
		metas = append(metas, sess.Meta())
	}
	return metas
}

// SessionCount returns the number of sessions.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendMessage adds a message to a session. Unknown session ids are a
// silent no-op. Returns the appended message's id, or "".
func (s *Store) AppendMessage(sessionID string, msg model.Message) string {
	s.mu.Lock()
	idx := s.findLocked(sessionID)
	if idx == -1 {
		s.mu.Unlock()
		return ""
	}

	clone := s.sessions[idx].Clone()
	clone.AddMessage(msg)
	s.sessions[idx] = clone
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return msg.ID
}

// UpdateMessage applies a partial update to one message. A missing session
// or message is a silent no-op: the generation controller may race a
// "session deleted while streaming" scenario, and the no-op makes that race
// safe instead of fatal.
func (s *Store) UpdateMessage(sessionID, messageID string, patch model.MessagePatch) {
	s.mu.Lock()
	idx := s.findLocked(sessionID)
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	msgIdx := s.sessions[idx].MessageIndex(messageID)
	if msgIdx == -1 {
		s.mu.Unlock()
		return
	}

	clone := s.sessions[idx].Clone()
	patch.Apply(&clone.Messages[msgIdx])
	clone.UpdatedAt = time.Now()
	s.sessions[idx] = clone
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// ClearMessages removes all messages from a session, keeping the session
// itself. Unknown ids are a no-op.
func (s *Store) ClearMessages(sessionID string) {
	s.mu.Lock()
	idx := s.findLocked(sessionID)
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	clone := s.sessions[idx].Clone()
	clone.Messages = nil
	clone.UpdatedAt = time.Now()
	s.sessions[idx] = clone
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// PersistErr returns the most recent persistence failure, if any. Persistence
// is best-effort: a failed write never blocks or corrupts the in-memory
// state.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// persistLocked writes through to the persister. Caller must hold s.mu.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	s.persistErr = s.persister.Save(s.sessions, s.currentID)
}

// findLocked returns the index of the session with the given id, or -1.
// Caller must hold s.mu (read or write).
func (s *Store) findLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}
