package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"rtrove/internal/models"
)

// GetForumPosts returns the forum threads of a project.
func (s *Store) GetForumPosts(projectID string) []models.ForumPost {
	var out []models.ForumPost
	s.view(func(st *state) {
		for _, fp := range st.forumPosts {
			if fp.ProjectID == projectID {
				out = append(out, fp.Clone())
			}
		}
	})
	return nonNil(out)
}

// GetForumPost returns one forum thread.
func (s *Store) GetForumPost(postID string) (*models.ForumPost, error) {
	var out *models.ForumPost
	s.view(func(st *state) {
		if i := indexForumPost(st.forumPosts, postID); i >= 0 {
			fp := st.forumPosts[i].Clone()
			out = &fp
		}
	})
	if out == nil {
		return nil, models.NewNotFoundError("Forum post not found")
	}
	return out, nil
}

// AddForumPost opens a thread in a project's forum.
func (s *Store) AddForumPost(ctx context.Context, projectID, title, content, userID, username string) (*models.ForumPost, error) {
	if strings.TrimSpace(title) == "" {
		return nil, models.NewValidationError("Title is required")
	}

	var created models.ForumPost
	err := s.mutate(ctx, "add forum post", func(u *unit) error {
		if _, err := u.project(projectID); err != nil {
			return err
		}
		created = models.ForumPost{
			ID:        s.newID(),
			ProjectID: projectID,
			Title:     title,
			Content:   content,
			UserID:    userID,
			Username:  username,
			Timestamp: models.Timestamp(s.now().UnixMilli()),
			Comments:  []models.ForumComment{},
		}
		u.setForumPosts(append(u.st.forumPosts, created))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateForumPost merges patch into a thread.
func (s *Store) UpdateForumPost(ctx context.Context, postID string, patch models.ForumPostPatch) (*models.ForumPost, error) {
	var updated models.ForumPost
	err := s.mutate(ctx, "update forum post", func(u *unit) error {
		i, err := u.forumPost(postID)
		if err != nil {
			return err
		}
		patch.Apply(&u.st.forumPosts[i])
		u.setForumPosts(u.st.forumPosts)
		updated = u.st.forumPosts[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteForumPost removes a thread and its comments.
func (s *Store) DeleteForumPost(ctx context.Context, postID string) error {
	return s.mutate(ctx, "delete forum post", func(u *unit) error {
		i, err := u.forumPost(postID)
		if err != nil {
			return err
		}
		u.setForumPosts(slices.Delete(u.st.forumPosts, i, i+1))
		return nil
	})
}

// AddForumComment replies in a thread. parentID is nil for a top-level
// comment and must name a comment of the same thread otherwise. A non-empty
// projectID must match the thread's project.
func (s *Store) AddForumComment(ctx context.Context, projectID, postID, content, userID, username string, parentID *string) (*models.ForumComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	var created models.ForumComment
	err := s.mutate(ctx, "add forum comment", func(u *unit) error {
		i, err := u.forumPost(postID)
		if err != nil {
			return err
		}
		post := u.st.forumPosts[i].Clone()
		if projectID != "" && projectID != post.ProjectID {
			return models.NewValidationError("Forum post does not belong to this project")
		}

		if parentID != nil {
			if !slices.ContainsFunc(post.Comments, func(c models.ForumComment) bool { return c.ID == *parentID }) {
				return models.NewNotFoundError("Parent comment not found")
			}
			parent := *parentID
			parentID = &parent
		}

		isProjectCreator := false
		if pi := indexProject(u.st.projects, post.ProjectID); pi >= 0 {
			isProjectCreator = u.st.projects[pi].CreatorID == userID
		}

		created = models.ForumComment{
			ID:               s.newID(),
			PostID:           postID,
			Content:          content,
			UserID:           userID,
			Username:         username,
			Timestamp:        models.Timestamp(s.now().UnixMilli()),
			ParentID:         parentID,
			IsOP:             userID == post.UserID,
			IsProjectCreator: isProjectCreator,
		}
		post.Comments = append(post.Comments, created)
		u.st.forumPosts[i] = post
		u.setForumPosts(u.st.forumPosts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateForumComment replaces a comment's content.
func (s *Store) UpdateForumComment(ctx context.Context, commentID, content string) error {
	return s.mutate(ctx, "update forum comment", func(u *unit) error {
		pi, ci := findForumComment(u.st.forumPosts, commentID)
		if pi < 0 {
			return models.NewNotFoundError("Comment not found")
		}
		post := u.st.forumPosts[pi].Clone()
		post.Comments[ci].Content = content
		u.st.forumPosts[pi] = post
		u.setForumPosts(u.st.forumPosts)
		return nil
	})
}

// DeleteForumComment removes a comment and every reply beneath it.
func (s *Store) DeleteForumComment(ctx context.Context, commentID string) error {
	return s.mutate(ctx, "delete forum comment", func(u *unit) error {
		pi, _ := findForumComment(u.st.forumPosts, commentID)
		if pi < 0 {
			return models.NewNotFoundError("Comment not found")
		}
		post := u.st.forumPosts[pi].Clone()
		post.Comments = withoutForumComments(post.Comments, func(c models.ForumComment) bool {
			return c.ID == commentID
		})
		u.st.forumPosts[pi] = post
		u.setForumPosts(u.st.forumPosts)
		return nil
	})
}

// ForumThread returns a thread's comments in depth-first reply order.
// Replies whose parent is gone are shown at the top level.
func (s *Store) ForumThread(postID string) ([]models.ThreadedComment, error) {
	post, err := s.GetForumPost(postID)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(post.Comments))
	for _, c := range post.Comments {
		present[c.ID] = true
	}
	children := lo.GroupBy(post.Comments, func(c models.ForumComment) string {
		if c.ParentID == nil || !present[*c.ParentID] {
			return ""
		}
		return *c.ParentID
	})
	for _, list := range children {
		slices.SortStableFunc(list, func(a, b models.ForumComment) int {
			return cmp.Compare(a.Timestamp, b.Timestamp)
		})
	}

	out := make([]models.ThreadedComment, 0, len(post.Comments))
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, c := range children[parent] {
			out = append(out, models.ThreadedComment{ForumComment: c, Depth: depth})
			walk(c.ID, depth+1)
		}
	}
	walk("", 0)
	return out, nil
}

func findForumComment(posts []models.ForumPost, commentID string) (int, int) {
	for pi, fp := range posts {
		for ci, c := range fp.Comments {
			if c.ID == commentID {
				return pi, ci
			}
		}
	}
	return -1, -1
}

// withoutForumComments drops the comments matching remove and, transitively,
// every reply to a dropped comment.
func withoutForumComments(comments []models.ForumComment, remove func(models.ForumComment) bool) []models.ForumComment {
	dropped := make(map[string]bool)
	for _, c := range comments {
		if remove(c) {
			dropped[c.ID] = true
		}
	}
	for grew := len(dropped) > 0; grew; {
		grew = false
		for _, c := range comments {
			if !dropped[c.ID] && c.ParentID != nil && dropped[*c.ParentID] {
				dropped[c.ID] = true
				grew = true
			}
		}
	}
	out := make([]models.ForumComment, 0, len(comments))
	for _, c := range comments {
		if !dropped[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
