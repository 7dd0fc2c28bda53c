package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(s *memStore) *AuthService {
	return NewAuthService(&fakeUserRepo{s: s}, "test-secret")
}

func TestRegisterCreatesExactlyOneProfile(t *testing.T) {
	s := newMemStore()
	svc := newAuthService(s)

	resp, err := svc.Register(context.Background(), RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "Sup3rSecret",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.AccessToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.profiles, 1)
	profile := s.profiles[resp.User.ProfileID]
	assert.Equal(t, resp.User.ID, profile.UserID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := newMemStore()
	svc := newAuthService(s)
	ctx := context.Background()

	input := RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "Sup3rSecret",
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.ErrorIs(t, err, ErrEmailTaken)

	input.Email = "other@example.com"
	_, err = svc.Register(ctx, input)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	s := newMemStore()
	svc := newAuthService(s)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "Sup3rSecret",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCreds)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Sup3rSecret"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestDeleteAccountCascades(t *testing.T) {
	s := newMemStore()
	authSvc := newAuthService(s)
	profileSvc := newProfileService(s)
	ctx := context.Background()

	alice := s.seedProfile("alice")
	bob := s.seedProfile("bob")
	bobPost := s.seedPost(bob, "bob post", time.Now())

	require.NoError(t, profileSvc.Follow(ctx, alice, bob))
	require.NoError(t, profileSvc.Follow(ctx, bob, alice))
	_, err := profileSvc.MarkRead(ctx, alice, bobPost)
	require.NoError(t, err)

	require.NoError(t, authSvc.DeleteAccount(ctx, bob))

	// Profile, posts, edges and read marks referencing bob are all gone.
	_, err = profileSvc.Get(ctx, bob)
	require.ErrorIs(t, err, ErrProfileNotFound)

	following, err := profileSvc.ListFollowing(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, following, "bob must vanish from every following set")

	posts, err := profileSvc.ReadPosts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, posts, "read marks on bob's posts must be pruned")

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.users, 1)
	assert.Len(t, s.profiles, 1)
	assert.Empty(t, s.posts)
	assert.Empty(t, s.follows)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.True(t, verifyPassword("Sup3rSecret", hash))
	assert.False(t, verifyPassword("sup3rsecret", hash))
	assert.False(t, verifyPassword("Sup3rSecret", "garbage"))
}
