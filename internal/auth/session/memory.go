package session

import (
	"context"
	"sync"

	"github.com/openfleet/fleetgate/internal/common/cnst"
)

// MemoryStore implements the Store interface using in-memory storage
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Save stores a session under its id
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// Get returns the session with the given id
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, cnst.ErrSessionNotFound
	}
	if sess.Expired() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, cnst.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
