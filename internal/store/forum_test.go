package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
)

func TestForumPosts_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	fp, err := s.AddForumPost(ctx, p.ID, "Mixing", "notes", alice.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, s.GetForumPosts(p.ID), 1)

	title := "Mastering"
	updated, err := s.UpdateForumPost(ctx, fp.ID, models.ForumPostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Mastering", updated.Title)
	assert.Equal(t, "notes", updated.Content)

	require.NoError(t, s.DeleteForumPost(ctx, fp.ID))
	assert.Empty(t, s.GetForumPosts(p.ID))

	_, err = s.AddForumPost(ctx, p.ID, " ", "x", alice.ID, "alice")
	assertAppError(t, err, models.CodeValidation, "Title is required")
	_, err = s.AddForumPost(ctx, "missing", "t", "x", alice.ID, "alice")
	assertAppError(t, err, models.CodeNotFound, "Project not found")
}

func TestAddForumComment_UnknownPost(t *testing.T) {
	s := newTestStore(t)
	alice := mustRegister(t, s, "alice")

	_, err := s.AddForumComment(context.Background(), "p", "missing", "hi", alice.ID, "alice", nil)
	assertAppError(t, err, models.CodeNotFound, "Forum post not found")
}

func TestAddForumComment_CreatorFlagFollowsThreadProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	albums := mustProject(t, s, alice, "Album")
	films := mustProject(t, s, bob, "Film")
	fp, err := s.AddForumPost(ctx, albums.ID, "Mixing", "notes", bob.ID, "bob")
	require.NoError(t, err)

	_, err = s.AddForumComment(ctx, films.ID, fp.ID, "wrong thread", bob.ID, "bob", nil)
	assertAppError(t, err, models.CodeValidation, "Forum post does not belong to this project")

	byBob, err := s.AddForumComment(ctx, "", fp.ID, "from bob", bob.ID, "bob", nil)
	require.NoError(t, err)
	assert.False(t, byBob.IsProjectCreator)
	byAlice, err := s.AddForumComment(ctx, "", fp.ID, "from alice", alice.ID, "alice", nil)
	require.NoError(t, err)
	assert.True(t, byAlice.IsProjectCreator)

	thread, err := s.ForumThread(fp.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 2)
}

func TestForumThread_DepthFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	bob := mustRegister(t, s, "bob")
	p := mustProject(t, s, alice, "Album")
	fp, err := s.AddForumPost(ctx, p.ID, "Mixing", "notes", bob.ID, "bob")
	require.NoError(t, err)

	add := func(content string, parent *models.ForumComment, user *models.User) *models.ForumComment {
		var parentID *string
		if parent != nil {
			parentID = &parent.ID
		}
		c, err := s.AddForumComment(ctx, p.ID, fp.ID, content, user.ID, user.Username, parentID)
		require.NoError(t, err)
		return c
	}

	first := add("first", nil, alice)
	second := add("second", nil, bob)
	reply := add("reply to first", first, bob)
	add("reply to reply", reply, alice)
	add("reply to second", second, alice)

	assert.True(t, first.IsProjectCreator)
	assert.False(t, first.IsOP)
	assert.True(t, second.IsOP)

	thread, err := s.ForumThread(fp.ID)
	require.NoError(t, err)
	var got []string
	var depths []int
	for _, c := range thread {
		got = append(got, c.Content)
		depths = append(depths, c.Depth)
	}
	assert.Equal(t, []string{"first", "reply to first", "reply to reply", "second", "reply to second"}, got)
	assert.Equal(t, []int{0, 1, 2, 0, 1}, depths)

	missing := "missing"
	_, err = s.AddForumComment(ctx, p.ID, fp.ID, "orphan", bob.ID, "bob", &missing)
	assertAppError(t, err, models.CodeNotFound, "Parent comment not found")

	require.NoError(t, s.UpdateForumComment(ctx, second.ID, "second (edited)"))
	require.NoError(t, s.DeleteForumComment(ctx, first.ID))

	thread, err = s.ForumThread(fp.ID)
	require.NoError(t, err)
	got = got[:0]
	for _, c := range thread {
		got = append(got, c.Content)
	}
	assert.Equal(t, []string{"second (edited)", "reply to second"}, got)

	assertAppError(t, s.DeleteForumComment(ctx, first.ID), models.CodeNotFound, "Comment not found")
	assertAppError(t, s.UpdateForumComment(ctx, "missing", "x"), models.CodeNotFound, "Comment not found")
}
