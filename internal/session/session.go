package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/keyfold/keyfold/internal/dependencies/clock"
	"github.com/keyfold/keyfold/internal/dependencies/random"
	"github.com/keyfold/keyfold/internal/model"
)

// Session binds a token to an authenticated username until ExpiresAt.
// Expiry is absolute from creation, never sliding: a session entry is never
// mutated after Create, only destroyed.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store defines the interface for session persistence, keyed by token.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a session. The ttl is advisory for backends with native
	// expiry; the authoritative deadline is sess.ExpiresAt.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error

	// Get returns the session for a token, or model.ErrInvalidSession if
	// the token is unknown.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions whose deadline has passed. Backends
	// with native expiry may treat this as a no-op.
	DeleteExpired(ctx context.Context, now time.Time) error
}

// Config holds configuration for the session manager
type Config struct {
	// TTL is the fixed duration a session remains valid after creation
	TTL time.Duration

	// SweepInterval is how often the background sweep evicts expired
	// sessions from the store
	SweepInterval time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:           time.Hour,
		SweepInterval: 5 * time.Minute,
	}
}

// Manager issues, resolves and destroys session tokens
type Manager struct {
	store  Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	ttl           time.Duration
	sweepInterval time.Duration
}

// NewManager creates a session manager backed by the given store
func NewManager(store Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Manager{
		store:         store,
		clock:         clk,
		random:        rnd,
		logger:        logger,
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
	}
}

// Create issues a new unpredictable token bound to the username
func (m *Manager) Create(ctx context.Context, username string) (*Session, error) {
	now := m.clock.Now()
	sess := &Session{
		Token:     "sess_" + m.random.Token(16),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return nil, err
	}

	m.logger.Info("session created", slog.String("username", username))
	return sess, nil
}

// Resolve returns the session for a token, or model.ErrInvalidSession if the
// token is unknown or past its deadline. Expired entries are evicted lazily
// here; the sweep loop covers tokens that are never looked up again.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if !m.clock.Now().Before(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, model.ErrInvalidSession
	}

	return sess, nil
}

// Destroy removes a session. Destroying an unknown or expired token is not
// an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// SweepLoop periodically evicts expired sessions until the context is
// cancelled. Run it in its own goroutine.
func (m *Manager) SweepLoop(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.DeleteExpired(ctx, m.clock.Now()); err != nil {
				m.logger.Warn("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
