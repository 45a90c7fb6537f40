package factory

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/keyfold/keyfold/internal/dependencies/mocks"
	"github.com/keyfold/keyfold/internal/dependencies/random"
	"github.com/keyfold/keyfold/internal/hasher"
	"github.com/keyfold/keyfold/internal/mailer"
	"github.com/keyfold/keyfold/internal/session"
	sessionmemory "github.com/keyfold/keyfold/internal/session/memory"
	storagememory "github.com/keyfold/keyfold/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// MockClock controls time for session expiry tests
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing: in-memory stores, a
// minimum-cost hasher so tests stay fast, a controllable clock and a noop
// mailer. Real randomness is kept so tokens stay unique across calls.
func NewTestApp() *TestApp {
	store := storagememory.New()
	sessStore := sessionmemory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	hasherCfg := hasher.Config{Cost: bcrypt.MinCost, MaxConcurrent: 4}

	app := newWithDependencies(
		store, sessStore, mockClock, random.New(), &mailer.Noop{},
		hasherCfg, session.DefaultConfig(), logger,
	)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
