package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyfold/keyfold/internal/account"
	"github.com/keyfold/keyfold/internal/dependencies/mocks"
	"github.com/keyfold/keyfold/internal/hasher"
	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/storage/memory"
	"github.com/keyfold/keyfold/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Storage
	random  *mocks.MockRandom
	service *account.Service
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.random = mocks.NewMockRandom()
	h := hasher.New(hasher.Config{Cost: bcrypt.MinCost, MaxConcurrent: 4})
	s.service = account.New(s.store, h, s.random, testutil.NopLogger())
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegisterAndAuthenticate() {
	ctx := context.Background()

	id, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(int64(1), id)

	identity, err := s.service.Authenticate(ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal("alice", identity.Username)
}

func (s *ServiceSuite) TestRegisterStoresDigestNotPlaintext() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	stored, err := s.store.GetByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.NotEqual("hunter2", stored.PasswordHash)
	s.NotContains(stored.PasswordHash, "hunter2")
}

func (s *ServiceSuite) TestRegisterRejectsEmptyInput() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "", "hunter2")
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.service.Register(ctx, "alice", "")
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.service.Register(ctx, "alice", "other-password")
	s.ErrorIs(err, model.ErrUsernameTaken)

	// The losing attempt must not have touched the original credentials
	identity, err := s.service.Authenticate(ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal("alice", identity.Username)
}

func (s *ServiceSuite) TestAuthenticateWrongPassword() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.service.Authenticate(ctx, "alice", "hunter3")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateUnknownUser() {
	_, err := s.service.Authenticate(context.Background(), "nobody", "hunter2")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestUnknownUserAndWrongPasswordAreIndistinguishable() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, errWrongPassword := s.service.Authenticate(ctx, "alice", "wrong")
	_, errUnknownUser := s.service.Authenticate(ctx, "nobody", "wrong")

	s.Equal(errWrongPassword, errUnknownUser)
}

func (s *ServiceSuite) TestUpdateCredentials() {
	ctx := context.Background()

	id, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	err = s.service.UpdateCredentials(ctx, &model.Identity{Username: "alice"}, "alicia", "n3w-pass")
	s.Require().NoError(err)

	// Old credentials no longer work
	_, err = s.service.Authenticate(ctx, "alice", "hunter2")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	// New ones do, and the account kept its ID
	identity, err := s.service.Authenticate(ctx, "alicia", "n3w-pass")
	s.Require().NoError(err)
	s.Equal("alicia", identity.Username)

	stored, err := s.store.GetByUsername(ctx, "alicia")
	s.Require().NoError(err)
	s.Equal(id, stored.ID)
}

func (s *ServiceSuite) TestUpdateCredentialsToTakenUsername() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)
	_, err = s.service.Register(ctx, "bob", "bobpass")
	s.Require().NoError(err)

	err = s.service.UpdateCredentials(ctx, &model.Identity{Username: "alice"}, "bob", "n3w-pass")
	s.ErrorIs(err, model.ErrUsernameTaken)

	// Nothing changed for either account
	_, err = s.service.Authenticate(ctx, "alice", "hunter2")
	s.NoError(err)
	_, err = s.service.Authenticate(ctx, "bob", "bobpass")
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdateCredentialsRequiresIdentity() {
	ctx := context.Background()

	err := s.service.UpdateCredentials(ctx, nil, "alicia", "n3w-pass")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	err = s.service.UpdateCredentials(ctx, &model.Identity{}, "alicia", "n3w-pass")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestUpdateCredentialsRejectsEmptyInput() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	identity := &model.Identity{Username: "alice"}

	s.ErrorIs(s.service.UpdateCredentials(ctx, identity, "", "n3w-pass"), model.ErrInvalidInput)
	s.ErrorIs(s.service.UpdateCredentials(ctx, identity, "alicia", ""), model.ErrInvalidInput)
}

func (s *ServiceSuite) TestResetPassword() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	s.random.QueueString("fresh-random-password")

	plaintext, err := s.service.ResetPassword(ctx, "alice")
	s.Require().NoError(err)
	s.Equal("fresh-random-password", plaintext)

	// Old password invalidated, returned one works
	_, err = s.service.Authenticate(ctx, "alice", "hunter2")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	identity, err := s.service.Authenticate(ctx, "alice", plaintext)
	s.Require().NoError(err)
	s.Equal("alice", identity.Username)
}

func (s *ServiceSuite) TestResetPasswordDiffersPerCall() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, "alice", "hunter2")
	s.Require().NoError(err)

	// MockRandom falls back to sequence-numbered values when no results
	// are queued, so consecutive calls differ just like CryptoRandom's
	first, err := s.service.ResetPassword(ctx, "alice")
	s.Require().NoError(err)
	second, err := s.service.ResetPassword(ctx, "alice")
	s.Require().NoError(err)

	s.NotEqual(first, second)
}

func (s *ServiceSuite) TestResetPasswordUnknownUser() {
	_, err := s.service.ResetPassword(context.Background(), "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestResetPasswordRejectsEmptyUsername() {
	_, err := s.service.ResetPassword(context.Background(), "")
	s.ErrorIs(err, model.ErrInvalidInput)
}
