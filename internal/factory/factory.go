package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/keyfold/keyfold/internal/account"
	"github.com/keyfold/keyfold/internal/dependencies/clock"
	"github.com/keyfold/keyfold/internal/dependencies/random"
	"github.com/keyfold/keyfold/internal/hasher"
	"github.com/keyfold/keyfold/internal/mailer"
	"github.com/keyfold/keyfold/internal/session"
	sessionmemory "github.com/keyfold/keyfold/internal/session/memory"
	sessionredis "github.com/keyfold/keyfold/internal/session/redis"
	"github.com/keyfold/keyfold/internal/storage"
	storagememory "github.com/keyfold/keyfold/internal/storage/memory"
	storagepostgres "github.com/keyfold/keyfold/internal/storage/postgres"
)

// Store type constants
const (
	StoreTypeMemory   = "memory"
	StoreTypePostgres = "postgres"

	SessionStoreTypeMemory = "memory"
	SessionStoreTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Store        storage.AccountStore
	SessionStore session.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Hasher   hasher.Hasher
	Accounts *account.Service
	Sessions *session.Manager
	Mailer   mailer.Mailer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StoreType selects the account store backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StoreType string
	// DatabaseURL is the PostgreSQL connection string (required if
	// StoreType is "postgres")
	DatabaseURL string

	// SessionStoreType selects the session store backend ("memory" or
	// "redis"). If empty, defaults to "memory"
	SessionStoreType string
	// RedisConfig holds Redis connection settings (required if
	// SessionStoreType is "redis")
	RedisConfig *sessionredis.Config

	// HasherConfig holds bcrypt settings (optional)
	HasherConfig hasher.Config
	// SessionConfig holds session TTL settings (optional)
	SessionConfig session.Config
	// MailerConfig holds SendGrid settings; if APIKey is empty, reset
	// passwords are returned in the API response instead of emailed
	MailerConfig mailer.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create account store based on type
	var store storage.AccountStore
	storeType := cfg.StoreType
	if storeType == "" {
		storeType = StoreTypeMemory
	}

	switch storeType {
	case StoreTypeMemory:
		store = storagememory.New()
	case StoreTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StoreType is postgres")
		}
		pgStore, err := storagepostgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StoreType: must be 'memory' or 'postgres'")
	}

	// Create session store based on type
	var sessStore session.Store
	sessionStoreType := cfg.SessionStoreType
	if sessionStoreType == "" {
		sessionStoreType = SessionStoreTypeMemory
	}

	switch sessionStoreType {
	case SessionStoreTypeMemory:
		sessStore = sessionmemory.New()
	case SessionStoreTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionStoreType is redis")
		}
		redisStore, err := sessionredis.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		sessStore = redisStore
	default:
		return nil, errors.New("invalid SessionStoreType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var m mailer.Mailer
	if cfg.MailerConfig.APIKey != "" {
		m = mailer.NewSendgrid(cfg.MailerConfig)
	} else {
		m = &mailer.Noop{}
	}

	return newWithDependencies(store, sessStore, clk, rnd, m, cfg.HasherConfig, cfg.SessionConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.AccountStore,
	sessStore session.Store,
	clk clock.Clock,
	rnd random.Random,
	m mailer.Mailer,
	hasherCfg hasher.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	h := hasher.New(hasherCfg)
	accounts := account.New(store, h, rnd, logger)
	sessions := session.NewManager(sessStore, clk, rnd, sessionCfg, logger)

	return &App{
		Store:        store,
		SessionStore: sessStore,
		Clock:        clk,
		Random:       rnd,
		Hasher:       h,
		Accounts:     accounts,
		Sessions:     sessions,
		Mailer:       m,
	}
}
