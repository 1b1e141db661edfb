// Package sessions manages console web sessions created after a successful
// sign-in with the auth provider.
package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// DefaultTTL applies when a store is created with a non-positive TTL.
const DefaultTTL = 24 * time.Hour

// Session is the server-side state behind the session cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions with a fixed time-to-live.
type Store interface {
	// Create assigns ID, CreatedAt and ExpiresAt and stores the session.
	Create(ctx context.Context, s *Session) error
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}

// stamp fills in the fields Create owns.
func stamp(s *Session, now time.Time, ttl time.Duration) {
	s.ID = uuid.NewString()
	s.CreatedAt = now.UTC()
	s.ExpiresAt = s.CreatedAt.Add(ttl)
}

// MemoryStore is a thread-safe in-memory session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session // key: session ID
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	stamp(s, m.now(), m.ttl)
	cp := *s

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &cp
	m.sweepLocked()
	return nil
}

// Get retrieves a live session by ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(), nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sweepLocked drops expired sessions. Create calls it so the map stays
// bounded between janitor cycles.
func (m *MemoryStore) sweepLocked() int {
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
