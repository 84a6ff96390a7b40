package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
)

func TestFollowUnfollow_Symmetric(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")

	require.NoError(t, s.FollowUser(ctx, alice.ID, bob.ID))

	a, _ := s.GetUser(alice.ID)
	b, _ := s.GetUser(bob.ID)
	assert.True(t, a.Following.Contains(bob.ID))
	assert.True(t, b.Followers.Contains(alice.ID))

	followers, err := s.GetFollowers(bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	// Following twice keeps a single edge.
	require.NoError(t, s.FollowUser(ctx, alice.ID, bob.ID))
	a, _ = s.GetUser(alice.ID)
	assert.Equal(t, 1, a.Following.Len())

	require.NoError(t, s.UnfollowUser(ctx, alice.ID, bob.ID))
	a, _ = s.GetUser(alice.ID)
	b, _ = s.GetUser(bob.ID)
	assert.False(t, a.Following.Contains(bob.ID))
	assert.False(t, b.Followers.Contains(alice.ID))

	following, err := s.GetFollowing(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollowUser_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")

	err := s.FollowUser(ctx, alice.ID, alice.ID)
	assertAppError(t, err, models.CodeValidation, "Users cannot follow themselves")

	err = s.FollowUser(ctx, alice.ID, "ghost")
	assertAppError(t, err, models.CodeNotFound, "User not found")

	a, _ := s.GetUser(alice.ID)
	assert.Equal(t, 0, a.Following.Len())
}

func TestFollowUser_UpdatesSessionSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bob := mustRegister(t, s, "bob")
	alice := mustRegister(t, s, "alice")

	require.NoError(t, s.FollowUser(ctx, alice.ID, bob.ID))
	assert.True(t, s.CurrentUser().Following.Contains(bob.ID))
}
