package storage

import (
	"context"

	"github.com/keyfold/keyfold/internal/model"
)

// AccountStore defines the interface for durable account persistence.
// Implementations must guarantee that two concurrent Create calls for the
// same username cannot both succeed, and that UpdateCredentials is atomic
// with respect to concurrent writers.
type AccountStore interface {
	// Create inserts a new account and returns its assigned ID.
	// Returns model.ErrUsernameTaken if the username is already present.
	Create(ctx context.Context, username, passwordHash string) (int64, error)

	// GetByUsername looks up an account by exact username.
	// Returns model.ErrAccountNotFound if no such account exists.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)

	// UpdateCredentials atomically renames an account and replaces its
	// password hash. Returns model.ErrAccountNotFound if oldUsername does
	// not exist, or model.ErrUsernameTaken if newUsername belongs to a
	// different account; in both cases nothing is mutated.
	UpdateCredentials(ctx context.Context, oldUsername, newUsername, newPasswordHash string) error

	// SetPassword replaces the password hash for an account.
	// Returns model.ErrAccountNotFound if the username does not exist.
	SetPassword(ctx context.Context, username, newPasswordHash string) error
}
