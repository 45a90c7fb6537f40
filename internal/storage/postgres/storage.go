package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL
)`

// db is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage is a PostgreSQL-backed implementation of the account store.
// Username uniqueness is enforced by the UNIQUE constraint, so concurrent
// duplicate registrations are resolved by the database.
type Storage struct {
	db   db
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, ensures the accounts table exists and returns
// the store.
func New(ctx context.Context, url string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: pool, pool: pool}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB creates a store on an existing connection (for testing)
func NewWithDB(conn db) *Storage {
	return &Storage{db: conn}
}

// Close closes the connection pool
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

func (s *Storage) init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password_hash FROM accounts WHERE username = $1`,
		username,
	).Scan(&account.ID, &account.Username, &account.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *Storage) UpdateCredentials(ctx context.Context, oldUsername, newUsername, newPasswordHash string) error {
	// Single UPDATE so the rename and rehash are atomic at the row level
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET username = $1, password_hash = $2 WHERE username = $3`,
		newUsername, newPasswordHash, oldUsername,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) SetPassword(ctx context.Context, username, newPasswordHash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET password_hash = $1 WHERE username = $2`,
		newPasswordHash, username,
	)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
