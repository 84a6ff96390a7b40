package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
	"rtrove/internal/storage"
)

func TestAddProject_Validation(t *testing.T) {
	goal := -5.0
	tests := []struct {
		name    string
		in      models.NewProject
		message string
	}{
		{"missing title", models.NewProject{Description: "d", PrimaryType: "Music"}, "Title is required"},
		{"missing description", models.NewProject{Title: "t", PrimaryType: "Music"}, "Description is required"},
		{"missing type", models.NewProject{Title: "t", Description: "d"}, "At least one project type is required"},
		{"negative goal", models.NewProject{Title: "t", Description: "d", PrimaryType: "Music", FundraisingGoal: &goal}, "FundraisingGoal must be greater than 0"},
	}

	s := newTestStore(t)
	mustRegister(t, s, "alice")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddProject(context.Background(), tt.in)
			assertAppError(t, err, models.CodeValidation, tt.message)
		})
	}
	assert.Empty(t, s.ListProjects())
}

func TestAddProject_RequiresSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustRegister(t, s, "alice")
	require.NoError(t, s.Logout(ctx))

	_, err := s.AddProject(ctx, models.NewProject{Title: "t", Description: "d", PrimaryType: "Music"})
	assertAppError(t, err, models.CodeUnauthorized, "")
}

func TestAddProject_Defaults(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := mustRegister(t, env.store, "alice")

	p, err := env.store.AddProject(ctx, models.NewProject{
		Title:           "Album",
		Description:     "Songs",
		AdditionalTypes: []string{"Music", "Film"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Music", p.PrimaryType)
	assert.Equal(t, []string{"Film"}, p.AdditionalTypes)
	assert.Equal(t, alice.ID, p.CreatorID)
	assert.Equal(t, "alice", p.Creator)
	assert.Equal(t, 0, p.Likes.Len())
	assert.Equal(t, 0, p.Collaborators.Len())

	ids, found, err := storage.LoadJSON[[]string](ctx, env.kv, storage.UserProjectsKey(alice.ID))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{p.ID}, ids)
}

func TestEditProject_ConcatenatesFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	_, err := s.EditProject(ctx, p.ID, models.ProjectPatch{Files: []string{"a.png"}})
	require.NoError(t, err)

	title := "Album II"
	got, err := s.EditProject(ctx, p.ID, models.ProjectPatch{Title: &title, Files: []string{"b.png", "c.png"}})
	require.NoError(t, err)
	assert.Equal(t, "Album II", got.Title)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, got.Files)

	_, err = s.EditProject(ctx, "missing", models.ProjectPatch{})
	assertAppError(t, err, models.CodeNotFound, "Project not found")
}

func TestUpdateProject_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	p.Title = "Replaced"
	p.Files = nil
	require.NoError(t, s.UpdateProject(ctx, *p))

	got, err := s.GetProjectByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replaced", got.Title)

	err = s.UpdateProject(ctx, models.Project{ID: "missing"})
	assertAppError(t, err, models.CodeNotFound, "")
}

func TestToggleProjectParticipation_TwiceRestores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")

	joined, err := s.ToggleProjectParticipation(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, joined.Collaborators.Contains(bob.ID))
	b, _ := s.GetUser(bob.ID)
	assert.Equal(t, 1, b.ProjectsJoined)
	assert.Len(t, s.GetJoinedProjects(bob.ID), 1)

	left, err := s.ToggleProjectParticipation(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Collaborators.Slice(), left.Collaborators.Slice())
	b, _ = s.GetUser(bob.ID)
	assert.Equal(t, 0, b.ProjectsJoined)
}

func TestLikeProject_SetSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")

	before := s.GetLikes(p.ID)

	require.NoError(t, s.LikeProject(ctx, bob.ID, p.ID))
	require.NoError(t, s.LikeProject(ctx, bob.ID, p.ID))
	assert.Equal(t, []string{bob.ID}, s.GetLikes(p.ID))
	assert.Len(t, s.GetLikedProjects(bob.ID), 1)

	require.NoError(t, s.UnlikeProject(ctx, bob.ID, p.ID))
	assert.Equal(t, before, s.GetLikes(p.ID))

	liked, err := s.ToggleLike(ctx, bob.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = s.ToggleLike(ctx, bob.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Empty(t, s.GetLikes("missing"))
	assertAppError(t, s.LikeProject(ctx, bob.ID, "missing"), models.CodeNotFound, "Project not found")
}

func TestDeleteProject_Cascades(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")
	keep := mustProject(t, s, alice, "Film")

	_, err := s.ToggleProjectParticipation(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.SaveProject(ctx, bob.ID, p.ID))
	require.NoError(t, s.SaveProject(ctx, bob.ID, keep.ID))
	post, err := s.AddPost(ctx, bob.ID, "behind the scenes", "", p.ID)
	require.NoError(t, err)
	_, err = s.AddChat(ctx, p.ID, bob.ID, "hi")
	require.NoError(t, err)
	_, err = s.AddForumPost(ctx, p.ID, "Mixing", "notes", bob.ID, "bob")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, p.ID))

	for _, st := range []*Store{s, env.reload(t)} {
		_, err = st.GetProjectByID(p.ID)
		assertAppError(t, err, models.CodeNotFound, "")

		got, err := st.GetPost(post.ID)
		require.NoError(t, err)
		assert.Empty(t, got.ProjectID)

		assert.Empty(t, st.GetProjectChats(p.ID))
		assert.Empty(t, st.GetForumPosts(p.ID))
		assert.Equal(t, []string{keep.ID}, st.GetSavedProjects(bob.ID))

		b, _ := st.GetUser(bob.ID)
		assert.Equal(t, 0, b.ProjectsJoined)

		created := st.GetUserCreatedProjects(alice.ID)
		require.Len(t, created, 1)
		assert.Equal(t, keep.ID, created[0].ID)
	}

	ids, _, err := storage.LoadJSON[[]string](ctx, env.kv, storage.UserProjectsKey(alice.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, ids)

	assertAppError(t, s.DeleteProject(ctx, p.ID), models.CodeNotFound, "")
}

func TestSaveProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	require.NoError(t, s.SaveProject(ctx, alice.ID, p.ID))
	require.NoError(t, s.SaveProject(ctx, alice.ID, p.ID))
	assert.Equal(t, []string{p.ID}, s.GetSavedProjects(alice.ID))

	require.NoError(t, s.UnsaveProject(ctx, alice.ID, p.ID))
	assert.Empty(t, s.GetSavedProjects(alice.ID))
	require.NoError(t, s.UnsaveProject(ctx, alice.ID, p.ID))

	assertAppError(t, s.SaveProject(ctx, alice.ID, "missing"), models.CodeNotFound, "")
}
