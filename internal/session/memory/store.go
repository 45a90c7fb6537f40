package memory

import (
	"context"
	"sync"
	"time"

	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/session"
)

// Store is an in-memory session store. State is process-local: it starts
// empty on service start and is lost on restart, which forces re-login.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New creates a new in-memory session store
func New() *Store {
	return &Store{
		sessions: make(map[string]*session.Session),
	}
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.Token] = &copied
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrInvalidSession
	}
	copied := *sess
	return &copied, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteExpired removes every session past its deadline so the map cannot
// grow unbounded with tokens that are never resolved again.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// Len returns the number of stored sessions (for tests)
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
