package memory

import (
	"context"
	"sync"
	"time"

	"github.com/portfola/storywriter/internal/core/domain"
)

type sessionEntry struct {
	session   domain.InterviewSession
	expiresAt time.Time
}

// SessionStore is a map-backed interview session store with TTL expiry.
// Used when no Redis is configured.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]sessionEntry)}
}

// SaveSession stores a session copy with the given TTL.
func (s *SessionStore) SaveSession(ctx context.Context, session *domain.InterviewSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	copied.Turns = append([]domain.Turn(nil), session.Turns...)
	s.sessions[session.ID] = sessionEntry{
		session:   copied,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetSession returns a session copy, or (nil, nil) if it is missing or
// expired. Expired entries are removed lazily on read.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*domain.InterviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, nil
	}
	copied := entry.session
	copied.Turns = append([]domain.Turn(nil), entry.session.Turns...)
	return &copied, nil
}

// DeleteSession removes a session.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
