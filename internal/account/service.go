package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keyfold/keyfold/internal/dependencies/random"
	"github.com/keyfold/keyfold/internal/hasher"
	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/storage"
)

const (
	// Reset passwords are generated fresh per call from an alphabet with
	// no ambiguous glyphs (0/O, 1/l/I), long enough to be infeasible to
	// guess before the user changes it.
	resetPasswordLength   = 24
	resetPasswordAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"
)

// Service implements account business logic on top of the store and hasher.
// It never logs, stores or returns a plaintext password, with the single
// exception of ResetPassword's one-time return value.
type Service struct {
	store  storage.AccountStore
	hasher hasher.Hasher
	random random.Random
	logger *slog.Logger
}

// New creates a new account service
func New(store storage.AccountStore, h hasher.Hasher, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		hasher: h,
		random: rnd,
		logger: logger,
	}
}

// Register creates a new account and returns its ID
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, model.ErrInvalidInput
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, username, digest)
	if err != nil {
		return 0, err
	}

	s.logger.Info("account registered", slog.String("username", username))
	return id, nil
}

// Authenticate verifies a login attempt. Unknown usernames and wrong
// passwords both return model.ErrInvalidCredentials so the caller cannot
// tell them apart.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.Identity, error) {
	account, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(ctx, password, account.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	return &model.Identity{Username: account.Username}, nil
}

// UpdateCredentials renames the authenticated account and replaces its
// password. The caller is responsible for having resolved current via the
// session manager.
func (s *Service) UpdateCredentials(ctx context.Context, current *model.Identity, newUsername, newPassword string) error {
	if current == nil || current.Username == "" {
		return model.ErrInvalidCredentials
	}
	if newUsername == "" || newPassword == "" {
		return model.ErrInvalidInput
	}

	digest, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	if err := s.store.UpdateCredentials(ctx, current.Username, newUsername, digest); err != nil {
		return err
	}

	s.logger.Info("credentials updated", slog.String("username", newUsername))
	return nil
}

// ResetPassword replaces the account's password with a fresh high-entropy
// random one and returns the plaintext exactly once, for out-of-band
// delivery. It is never stored or logged.
func (s *Service) ResetPassword(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", model.ErrInvalidInput
	}

	plaintext := s.random.String(resetPasswordLength, resetPasswordAlphabet)

	digest, err := s.hasher.Hash(ctx, plaintext)
	if err != nil {
		return "", err
	}

	if err := s.store.SetPassword(ctx, username, digest); err != nil {
		return "", err
	}

	s.logger.Info("password reset", slog.String("username", username))
	return plaintext, nil
}
