package memory

import (
	"context"
	"sync"

	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/storage"
)

// Storage is an in-memory implementation of the account store. A single
// mutex serializes all writes, so concurrent registrations for the same
// username resolve to exactly one winner.
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*model.Account
	nextID   int64
}

// New creates a new in-memory account store
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
		nextID:   1,
	}
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

func (s *Storage) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; ok {
		return 0, model.ErrUsernameTaken
	}

	id := s.nextID
	s.nextID++
	s.accounts[username] = &model.Account{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
	}
	return id, nil
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *Storage) UpdateCredentials(ctx context.Context, oldUsername, newUsername, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[oldUsername]
	if !ok {
		return model.ErrAccountNotFound
	}
	if newUsername != oldUsername {
		if _, taken := s.accounts[newUsername]; taken {
			return model.ErrUsernameTaken
		}
		delete(s.accounts, oldUsername)
	}

	account.Username = newUsername
	account.PasswordHash = newPasswordHash
	s.accounts[newUsername] = account
	return nil
}

func (s *Storage) SetPassword(ctx context.Context, username, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[username]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.PasswordHash = newPasswordHash
	return nil
}
