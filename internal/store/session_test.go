package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
	"rtrove/internal/storage"
)

func TestRegister_Defaults(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Register(context.Background(), "alice", "x")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "https://picsum.photos/seed/alice/200", u.Avatar)
	assert.Equal(t, "New Artist", u.ArtType)
	assert.Equal(t, "Unknown", u.Location)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "x", u.PasswordHash)

	current := s.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, u.ID, current.ID)
	assert.True(t, s.IsAuthenticated())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Register(ctx, "alice", "x")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "y")
	assertAppError(t, err, models.CodeValidation, "Username already exists")

	users := s.GetAllUsers()
	require.Len(t, users, 1)
	assert.Equal(t, *first, users[0])
}

func TestRegister_BlankUsername(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Register(context.Background(), "   ", "x")
	assertAppError(t, err, models.CodeValidation, "Username is required")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		flags    string
		username string
		password string
		code     string
		message  string
	}{
		{"unknown user", "", "nobody", "x", models.CodeNotFound, "User not found"},
		{"password ignored by default", "", "alice", "wrong", "", ""},
		{"password checked when flagged", "password_check=on", "alice", "secret", "", ""},
		{"wrong password when flagged", "password_check=on", "alice", "wrong", models.CodeUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestEnv(t, tt.flags).store
			ctx := context.Background()
			alice := mustRegister(t, s, "alice")
			require.NoError(t, s.Logout(ctx))

			u, err := s.Login(ctx, tt.username, tt.password)
			if tt.code != "" {
				assertAppError(t, err, tt.code, tt.message)
				assert.False(t, s.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, u.ID)
			assert.True(t, s.IsAuthenticated())
		})
	}
}

func TestLogout_ClearsPersistedSession(t *testing.T) {
	env := newTestEnv(t, "")
	mustRegister(t, env.store, "alice")

	require.NoError(t, env.store.Logout(context.Background()))
	assert.Nil(t, env.store.CurrentUser())
	assert.Nil(t, env.reload(t).CurrentUser())
}

func TestUpdateUserProfile_MirrorsSession(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := mustRegister(t, env.store, "alice")

	bio := "Painter"
	updated, err := env.store.UpdateUserProfile(ctx, alice.ID, models.UserPatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Painter", updated.Bio)
	assert.Equal(t, "alice", updated.Name)

	assert.Equal(t, "Painter", env.store.CurrentUser().Bio)
	assert.Equal(t, "Painter", env.reload(t).CurrentUser().Bio)

	_, err = env.store.UpdateUserProfile(ctx, "missing", models.UserPatch{Bio: &bio})
	assertAppError(t, err, models.CodeNotFound, "User not found")
}

func TestGetUserByUsernameAndResolve(t *testing.T) {
	s := newTestStore(t)
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")

	got, err := s.GetUserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = s.GetUserByUsername("carol")
	assertAppError(t, err, models.CodeNotFound, "")

	resolved := s.ResolveUsers([]string{bob.ID, "gone", alice.ID})
	require.Len(t, resolved, 2)
	assert.Equal(t, bob.ID, resolved[0].ID)
	assert.Equal(t, alice.ID, resolved[1].ID)

	created := s.GetCreatedUsers()
	require.Len(t, created, 2)
	assert.Equal(t, bob.ID, created[0].ID)
}

func TestDeleteUserProfile_RemovesPerUserKeys(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()

	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, bob, "Film")
	require.NoError(t, s.SaveProject(ctx, alice.ID, p.ID))
	mustProject(t, s, alice, "Album")

	for _, key := range storage.UserKeys(alice.ID) {
		_, err := env.kv.Get(ctx, key)
		require.NoError(t, err, key)
	}

	require.NoError(t, s.DeleteUserProfile(ctx, alice.ID))
	for _, key := range storage.UserKeys(alice.ID) {
		_, err := env.kv.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound, key)
	}
	assert.Empty(t, s.GetSavedProjects(alice.ID))
	assert.Empty(t, env.reload(t).GetUserCreatedProjects(alice.ID))
}

func TestDeleteUserProfile_Cascades(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()

	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	carol := mustRegister(t, s, "carol")

	require.NoError(t, s.FollowUser(ctx, alice.ID, bob.ID))
	require.NoError(t, s.FollowUser(ctx, bob.ID, alice.ID))
	require.NoError(t, s.FollowUser(ctx, carol.ID, alice.ID))

	aliceProject := mustProject(t, s, alice, "Alice's album")
	bobProject := mustProject(t, s, bob, "Bob's film")
	_, err := s.ToggleProjectParticipation(ctx, bobProject.ID, alice.ID)
	require.NoError(t, err)
	_, err = s.ToggleProjectParticipation(ctx, aliceProject.ID, carol.ID)
	require.NoError(t, err)
	require.NoError(t, s.LikeProject(ctx, alice.ID, bobProject.ID))
	require.NoError(t, s.SaveProject(ctx, carol.ID, aliceProject.ID))

	alicePost, err := s.AddPost(ctx, alice.ID, "hello", "", "")
	require.NoError(t, err)
	bobPost, err := s.AddPost(ctx, bob.ID, "hi", "", bobProject.ID)
	require.NoError(t, err)
	require.NoError(t, s.LikePost(ctx, bobPost.ID, alice.ID))
	_, err = s.AddUserPostComment(ctx, bobPost.ID, "nice", alice.ID, "alice")
	require.NoError(t, err)
	_, err = s.AddUserPostComment(ctx, bobPost.ID, "thanks", bob.ID, "bob")
	require.NoError(t, err)

	_, err = s.AddChat(ctx, bobProject.ID, alice.ID, "hey")
	require.NoError(t, err)
	_, err = s.AddForumPost(ctx, bobProject.ID, "Ideas", "...", alice.ID, "alice")
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, s.DeleteUserProfile(ctx, alice.ID))

	check := func(t *testing.T, s *Store) {
		_, err := s.GetUser(alice.ID)
		assertAppError(t, err, models.CodeNotFound, "User not found")

		for _, u := range s.GetAllUsers() {
			assert.False(t, u.Following.Contains(alice.ID), u.Username)
			assert.False(t, u.Followers.Contains(alice.ID), u.Username)
		}

		_, err = s.GetProjectByID(aliceProject.ID)
		assertAppError(t, err, models.CodeNotFound, "")
		p, err := s.GetProjectByID(bobProject.ID)
		require.NoError(t, err)
		assert.False(t, p.Collaborators.Contains(alice.ID))
		assert.False(t, p.Likes.Contains(alice.ID))

		_, err = s.GetPost(alicePost.ID)
		assertAppError(t, err, models.CodeNotFound, "")
		post, err := s.GetPost(bobPost.ID)
		require.NoError(t, err)
		assert.False(t, post.Likes.Contains(alice.ID))
		require.Len(t, post.Comments, 1)
		assert.Equal(t, bob.ID, post.Comments[0].UserID)

		assert.Empty(t, s.GetProjectChats(bobProject.ID))
		assert.Empty(t, s.GetForumPosts(bobProject.ID))
		assert.Empty(t, s.GetSavedProjects(carol.ID))

		c, err := s.GetUser(carol.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, c.ProjectsJoined)

		assert.Nil(t, s.CurrentUser())
	}

	check(t, s)
	check(t, env.reload(t))
}
