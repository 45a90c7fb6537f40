package hasher

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies salted one-way password digests
type Hasher interface {
	// Hash computes a digest of the plaintext with a fresh random salt.
	// The same plaintext yields a different digest on every call.
	Hash(ctx context.Context, plaintext string) (string, error)

	// Verify reports whether the plaintext matches the digest. The
	// comparison is constant-time.
	Verify(ctx context.Context, plaintext, digest string) bool
}

// Config holds configuration for the bcrypt hasher
type Config struct {
	// Cost is the bcrypt work factor. The default targets roughly 100ms
	// per hash on commodity hardware and must stay stable within one
	// deployment, since it is baked into every stored digest.
	Cost int

	// MaxConcurrent bounds how many hash computations may run at once,
	// so a burst of logins cannot monopolize the process.
	MaxConcurrent int
}

// DefaultConfig returns default hasher configuration
func DefaultConfig() Config {
	return Config{
		Cost:          12,
		MaxConcurrent: runtime.GOMAXPROCS(0),
	}
}

// bcryptHasher implements Hasher using bcrypt, which embeds the salt and
// work factor in the digest itself
type bcryptHasher struct {
	cost int
	sem  chan struct{}
}

// New creates a bcrypt Hasher
func New(cfg Config) Hasher {
	if cfg.Cost == 0 {
		cfg.Cost = DefaultConfig().Cost
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &bcryptHasher{
		cost: cfg.Cost,
		sem:  make(chan struct{}, cfg.MaxConcurrent),
	}
}

func (h *bcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *bcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func (h *bcryptHasher) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *bcryptHasher) release() {
	<-h.sem
}
