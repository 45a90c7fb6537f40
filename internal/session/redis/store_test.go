package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/keyfold/keyfold/internal/model"
	"github.com/keyfold/keyfold/internal/session"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.store = NewWithClient(client)
}

func (s *StoreSuite) TearDownTest() {
	s.store.Close()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) testSession(token, username string) *session.Session {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &session.Session{
		Token:     token,
		Username:  username,
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
	}
}

func (s *StoreSuite) TestSaveAndGet() {
	ctx := context.Background()
	sess := s.testSession("sess_a", "alice")

	s.Require().NoError(s.store.Save(ctx, sess, time.Hour))

	got, err := s.store.Get(ctx, "sess_a")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.True(got.CreatedAt.Equal(sess.CreatedAt))
	s.True(got.ExpiresAt.Equal(sess.ExpiresAt))
}

func (s *StoreSuite) TestSaveSetsNativeTTL() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.testSession("sess_a", "alice"), time.Hour))

	ttl := s.mini.TTL("keyfold:session:sess_a")
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Hour)
}

func (s *StoreSuite) TestGetUnknownToken() {
	_, err := s.store.Get(context.Background(), "sess_nope")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *StoreSuite) TestGetAfterTTLElapses() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.testSession("sess_a", "alice"), time.Minute))

	s.mini.FastForward(2 * time.Minute)

	_, err := s.store.Get(ctx, "sess_a")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *StoreSuite) TestDelete() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.testSession("sess_a", "alice"), time.Hour))
	s.Require().NoError(s.store.Delete(ctx, "sess_a"))

	_, err := s.store.Get(ctx, "sess_a")
	s.ErrorIs(err, model.ErrInvalidSession)

	s.NoError(s.store.Delete(ctx, "sess_a"), "deleting an unknown token is not an error")
}

func (s *StoreSuite) TestSessionsAreKeyedByToken() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, s.testSession("sess_a", "alice"), time.Hour))
	s.Require().NoError(s.store.Save(ctx, s.testSession("sess_b", "bob"), time.Hour))

	s.Require().NoError(s.store.Delete(ctx, "sess_a"))

	got, err := s.store.Get(ctx, "sess_b")
	s.Require().NoError(err)
	s.Equal("bob", got.Username)
}
