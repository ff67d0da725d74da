package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no live session matches the id.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoBackup is returned when recovery is requested for a session that
// was never backed up.
var ErrNoBackup = errors.New("no backup for session")

// StoreConfig lets tests inject deterministic time and ids.
type StoreConfig struct {
	Clock func() time.Time
	NewID func() string
	TTL   time.Duration
}

// DefaultStoreConfig returns the production store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Clock: time.Now,
		NewID: uuid.NewString,
		TTL:   SessionTTL,
	}
}

// SessionStore keeps live sessions and their deep-copy backups in
// memory. Every accessor deep-copies on the way in and out so callers
// can never mutate stored state without going through Update.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	backups  map[string]*Session
	locks    map[string]*sync.Mutex
	config   StoreConfig
}

// NewSessionStore creates an empty store.
func NewSessionStore(cfg StoreConfig) *SessionStore {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.TTL <= 0 {
		cfg.TTL = SessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		backups:  make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
		config:   cfg,
	}
}

// Create registers a new session for the user and topic and returns a
// copy of it. Expired sessions are swept opportunistically.
func (st *SessionStore) Create(username, topic string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepLocked()

	now := st.config.Clock()
	s := &Session{
		ID:         st.config.NewID(),
		Username:   username,
		Topic:      topic,
		Level:      MinLevel,
		CreatedAt:  now,
		LastActive: now,
	}
	st.sessions[s.ID] = s
	st.locks[s.ID] = &sync.Mutex{}
	return s.Clone()
}

// Get returns a deep copy of the session, or ErrSessionNotFound.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Update replaces the stored session with a deep copy of the given one
// and refreshes its activity timestamp.
func (st *SessionStore) Update(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	c := s.Clone()
	c.LastActive = st.config.Clock()
	st.sessions[s.ID] = c
	return nil
}

// Backup stores a deep copy of the session's current state, replacing
// any previous backup.
func (st *SessionStore) Backup(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	st.backups[id] = s.Clone()
	return nil
}

// Recover restores the session from its backup and returns a copy of
// the restored state. The backup itself is kept so recovery can be
// repeated.
func (st *SessionStore) Recover(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	b, ok := st.backups[id]
	if !ok {
		return nil, ErrNoBackup
	}
	restored := b.Clone()
	restored.LastActive = st.config.Clock()
	st.sessions[id] = restored
	if _, ok := st.locks[id]; !ok {
		st.locks[id] = &sync.Mutex{}
	}
	return restored.Clone(), nil
}

// Heartbeat refreshes the session's activity timestamp.
func (st *SessionStore) Heartbeat(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastActive = st.config.Clock()
	return nil
}

// Delete removes the session, its backup, and its lock.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, id)
	delete(st.backups, id)
	delete(st.locks, id)
}

// CleanupExpired removes sessions idle past the TTL and returns how
// many were removed. Backups go with their sessions.
func (st *SessionStore) CleanupExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked()
}

func (st *SessionStore) sweepLocked() int {
	cutoff := st.config.Clock().Add(-st.config.TTL)
	removed := 0
	for id, s := range st.sessions {
		if s.LastActive.Before(cutoff) {
			delete(st.sessions, id)
			delete(st.backups, id)
			delete(st.locks, id)
			removed++
		}
	}
	return removed
}

// LockSession locks the per-session mutex so concurrent answers to the
// same session serialize. The returned unlock func must be called; it
// is a no-op func when the session does not exist.
func (st *SessionStore) LockSession(id string) (unlock func(), err error) {
	st.mu.Lock()
	l, ok := st.locks[id]
	st.mu.Unlock()
	if !ok {
		return func() {}, ErrSessionNotFound
	}
	l.Lock()
	return l.Unlock, nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
