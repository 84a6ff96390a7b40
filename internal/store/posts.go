package store

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"rtrove/internal/models"
)

// AddPost publishes a post to userID's feed. A post with neither content nor
// subject is not created and (nil, nil) is returned.
func (s *Store) AddPost(ctx context.Context, userID, content, subject, projectID string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" && strings.TrimSpace(subject) == "" {
		return nil, nil
	}

	var created models.Post
	err := s.mutate(ctx, "add post", func(u *unit) error {
		ui, err := u.user(userID)
		if err != nil {
			return err
		}
		if projectID != "" {
			if _, err := u.project(projectID); err != nil {
				return err
			}
		}

		created = models.Post{
			ID:        s.newID(),
			UserID:    userID,
			ProjectID: projectID,
			Subject:   subject,
			Content:   content,
			CreatedAt: models.Timestamp(s.now().UnixMilli()),
			Comments:  []models.PostComment{},
		}
		u.setPosts(append(u.st.posts, created))
		u.st.users[ui].Posts = u.st.users[ui].Posts.With(created.ID)
		u.setUsers(u.st.users)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePost removes a post and its id from the author's post list.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	return s.mutate(ctx, "delete post", func(u *unit) error {
		i, err := u.post(postID)
		if err != nil {
			return err
		}
		authorID := u.st.posts[i].UserID
		u.setPosts(slices.Delete(u.st.posts, i, i+1))

		if ai := indexUser(u.st.users, authorID); ai >= 0 {
			u.st.users[ai].Posts = u.st.users[ai].Posts.Without(postID)
			u.setUsers(u.st.users)
		}
		return nil
	})
}

// LikePost records userID's like on a post.
func (s *Store) LikePost(ctx context.Context, postID, userID string) error {
	return s.setPostLike(ctx, "like post", postID, userID, models.IDSet.With)
}

// UnlikePost withdraws userID's like from a post.
func (s *Store) UnlikePost(ctx context.Context, postID, userID string) error {
	return s.setPostLike(ctx, "unlike post", postID, userID, models.IDSet.Without)
}

func (s *Store) setPostLike(ctx context.Context, failure, postID, userID string, op func(models.IDSet, string) models.IDSet) error {
	return s.mutate(ctx, failure, func(u *unit) error {
		i, err := u.post(postID)
		if err != nil {
			return err
		}
		u.st.posts[i].Likes = op(u.st.posts[i].Likes, userID)
		u.setPosts(u.st.posts)
		return nil
	})
}

// GetUserPosts returns the posts authored by userID.
func (s *Store) GetUserPosts(userID string) []models.Post {
	return s.filterPosts(func(p models.Post) bool { return p.UserID == userID })
}

// GetProjectPosts returns the posts associated with projectID.
func (s *Store) GetProjectPosts(projectID string) []models.Post {
	return s.filterPosts(func(p models.Post) bool { return p.ProjectID == projectID })
}

// ListPosts returns every post.
func (s *Store) ListPosts() []models.Post {
	return s.filterPosts(func(models.Post) bool { return true })
}

func (s *Store) filterPosts(keep func(models.Post) bool) []models.Post {
	var out []models.Post
	s.view(func(st *state) {
		out = clonePosts(lo.Filter(st.posts, func(p models.Post, _ int) bool { return keep(p) }))
	})
	return out
}

// GetPost returns a post.
func (s *Store) GetPost(postID string) (*models.Post, error) {
	var out *models.Post
	s.view(func(st *state) {
		if i := indexPost(st.posts, postID); i >= 0 {
			p := st.posts[i].Clone()
			out = &p
		}
	})
	if out == nil {
		return nil, models.NewNotFoundError("Post not found")
	}
	return out, nil
}

// AddUserPostComment comments on a post. IsOP and IsProjectCreator are fixed
// at write time.
func (s *Store) AddUserPostComment(ctx context.Context, postID, content, userID, username string) (*models.PostComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	var created models.PostComment
	err := s.mutate(ctx, "add comment", func(u *unit) error {
		i, err := u.post(postID)
		if err != nil {
			return err
		}
		post := u.st.posts[i].Clone()

		isProjectCreator := false
		if pi := indexProject(u.st.projects, post.ProjectID); post.ProjectID != "" && pi >= 0 {
			isProjectCreator = u.st.projects[pi].CreatorID == userID
		}

		created = models.PostComment{
			ID:               s.newID(),
			PostID:           postID,
			Content:          content,
			UserID:           userID,
			Username:         username,
			Timestamp:        models.Timestamp(s.now().UnixMilli()),
			IsOP:             userID == post.UserID,
			IsProjectCreator: isProjectCreator,
		}
		post.Comments = append(post.Comments, created)
		u.st.posts[i] = post
		u.setPosts(u.st.posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteUserPostComment removes a comment from a post.
func (s *Store) DeleteUserPostComment(ctx context.Context, postID, commentID string) error {
	return s.mutate(ctx, "delete comment", func(u *unit) error {
		i, err := u.post(postID)
		if err != nil {
			return err
		}
		post := u.st.posts[i].Clone()
		before := len(post.Comments)
		post.Comments = slices.DeleteFunc(post.Comments, func(c models.PostComment) bool { return c.ID == commentID })
		if len(post.Comments) == before {
			return models.NewNotFoundError("Comment not found")
		}
		u.st.posts[i] = post
		u.setPosts(u.st.posts)
		return nil
	})
}
