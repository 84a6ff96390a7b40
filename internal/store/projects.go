package store

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"rtrove/internal/models"
	"rtrove/internal/storage"
)

// AddProject creates a project owned by the session user.
func (s *Store) AddProject(ctx context.Context, in models.NewProject) (*models.Project, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	types := lo.Compact(append([]string{strings.TrimSpace(in.PrimaryType)}, in.AdditionalTypes...))
	if len(types) == 0 {
		return nil, models.NewValidationError("At least one project type is required")
	}

	var created models.Project
	err := s.mutate(ctx, "add project", func(u *unit) error {
		if u.st.session == nil {
			return models.NewUnauthorizedError("You must be logged in to create a project")
		}
		creator := u.st.session

		created = models.Project{
			ID:              s.newID(),
			Title:           in.Title,
			Description:     in.Description,
			PrimaryType:     types[0],
			AdditionalTypes: lo.Uniq(types[1:]),
			Tags:            nonNil(lo.Uniq(lo.Compact(in.Tags))),
			Creator:         creator.Username,
			CreatorID:       creator.ID,
			CreatedAt:       s.now(),
			Files:           slices.Clone(in.Files),
		}
		if in.FundraisingGoal != nil {
			goal := *in.FundraisingGoal
			created.FundraisingGoal = &goal
		}

		u.setProjects(append(u.st.projects, created))
		u.setUserProjects(creator.ID, appendUnique(u.st.userProjects[creator.ID], created.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EditProject merges patch into a project. Files in the patch are appended.
func (s *Store) EditProject(ctx context.Context, projectID string, patch models.ProjectPatch) (*models.Project, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	var updated models.Project
	err := s.mutate(ctx, "edit project", func(u *unit) error {
		i, err := u.project(projectID)
		if err != nil {
			return err
		}
		p := u.st.projects[i].Clone()
		patch.Apply(&p)
		u.st.projects[i] = p
		u.setProjects(u.st.projects)
		u.setUserProjects(p.CreatorID, appendUnique(u.st.userProjects[p.CreatorID], p.ID))
		updated = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateProject replaces a stored project wholesale.
func (s *Store) UpdateProject(ctx context.Context, project models.Project) error {
	return s.mutate(ctx, "update project", func(u *unit) error {
		i, err := u.project(project.ID)
		if err != nil {
			return err
		}
		u.st.projects[i] = project.Clone()
		u.setProjects(u.st.projects)
		u.recountJoined()
		u.recountContributions()
		return nil
	})
}

// DeleteProject removes a project together with everything that points at it.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	return s.mutate(ctx, "delete project", func(u *unit) error {
		if _, err := u.project(projectID); err != nil {
			return err
		}
		u.removeProject(projectID)
		return nil
	})
}

// removeProject cascades a project deletion through the working copy:
// posts lose the association, forum posts and chats go, indexes are pruned
// and derived user counters are recomputed.
func (u *unit) removeProject(projectID string) {
	i := indexProject(u.st.projects, projectID)
	if i < 0 {
		return
	}
	creatorID := u.st.projects[i].CreatorID
	u.setProjects(slices.Delete(u.st.projects, i, i+1))

	postsChanged := false
	for j := range u.st.posts {
		if u.st.posts[j].ProjectID == projectID {
			u.st.posts[j].ProjectID = ""
			postsChanged = true
		}
	}
	if postsChanged {
		u.setPosts(u.st.posts)
	}

	forum := slices.DeleteFunc(slices.Clone(u.st.forumPosts), func(fp models.ForumPost) bool {
		return fp.ProjectID == projectID
	})
	if len(forum) != len(u.st.forumPosts) {
		u.setForumPosts(forum)
	}
	chats := slices.DeleteFunc(slices.Clone(u.st.chats), func(c models.Chat) bool {
		return c.ProjectID == projectID
	})
	if len(chats) != len(u.st.chats) {
		u.setChats(chats)
	}

	for userID, ids := range u.st.savedProjects {
		if slices.Contains(ids, projectID) {
			u.setSavedProjects(userID, lo.Without(ids, projectID))
		}
	}
	u.setUserProjects(creatorID, lo.Without(u.st.userProjects[creatorID], projectID))
	u.batch.Delete(storage.LikesKey(projectID))

	u.recountJoined()
	u.recountContributions()
}

// ToggleProjectParticipation adds userID to the collaborators or removes them
// if already present, and refreshes the user's joined-project count.
func (s *Store) ToggleProjectParticipation(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var updated models.Project
	err := s.mutate(ctx, "toggle project participation", func(u *unit) error {
		i, err := u.project(projectID)
		if err != nil {
			return err
		}
		if _, err := u.user(userID); err != nil {
			return err
		}
		u.st.projects[i].Collaborators = u.st.projects[i].Collaborators.Toggle(userID)
		u.setProjects(u.st.projects)
		u.recountJoined()
		updated = u.st.projects[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// LikeProject records userID's like. Liking twice is a no-op.
func (s *Store) LikeProject(ctx context.Context, userID, projectID string) error {
	return s.setProjectLike(ctx, "like project", userID, projectID, models.IDSet.With)
}

// UnlikeProject withdraws userID's like.
func (s *Store) UnlikeProject(ctx context.Context, userID, projectID string) error {
	return s.setProjectLike(ctx, "unlike project", userID, projectID, models.IDSet.Without)
}

// ToggleLike flips userID's like and reports whether the project is now liked.
func (s *Store) ToggleLike(ctx context.Context, userID, projectID string) (bool, error) {
	var liked bool
	err := s.setProjectLike(ctx, "toggle like", userID, projectID, func(likes models.IDSet, id string) models.IDSet {
		next := likes.Toggle(id)
		liked = next.Contains(id)
		return next
	})
	return liked, err
}

func (s *Store) setProjectLike(ctx context.Context, failure, userID, projectID string, op func(models.IDSet, string) models.IDSet) error {
	return s.mutate(ctx, failure, func(u *unit) error {
		i, err := u.project(projectID)
		if err != nil {
			return err
		}
		u.st.projects[i].Likes = op(u.st.projects[i].Likes, userID)
		u.setProjects(u.st.projects)
		return nil
	})
}

// GetLikes returns the ids of users who liked a project. Unknown projects have none.
func (s *Store) GetLikes(projectID string) []string {
	out := []string{}
	s.view(func(st *state) {
		if i := indexProject(st.projects, projectID); i >= 0 {
			out = st.projects[i].Likes.Slice()
		}
	})
	return out
}

// GetLikedProjects returns the projects userID liked.
func (s *Store) GetLikedProjects(userID string) []models.Project {
	return s.filterProjects(func(p models.Project) bool { return p.Likes.Contains(userID) })
}

// GetUserCreatedProjects returns the projects created by userID.
func (s *Store) GetUserCreatedProjects(userID string) []models.Project {
	return s.filterProjects(func(p models.Project) bool { return p.CreatorID == userID })
}

// GetJoinedProjects returns the projects userID collaborates on.
func (s *Store) GetJoinedProjects(userID string) []models.Project {
	return s.filterProjects(func(p models.Project) bool { return p.Collaborators.Contains(userID) })
}

// ListProjects returns every project.
func (s *Store) ListProjects() []models.Project {
	return s.filterProjects(func(models.Project) bool { return true })
}

func (s *Store) filterProjects(keep func(models.Project) bool) []models.Project {
	var out []models.Project
	s.view(func(st *state) {
		out = cloneProjects(lo.Filter(st.projects, func(p models.Project, _ int) bool { return keep(p) }))
	})
	return out
}

// GetProjectByID returns a project.
func (s *Store) GetProjectByID(projectID string) (*models.Project, error) {
	var out *models.Project
	s.view(func(st *state) {
		if i := indexProject(st.projects, projectID); i >= 0 {
			p := st.projects[i].Clone()
			out = &p
		}
	})
	if out == nil {
		return nil, models.NewNotFoundError("Project not found")
	}
	return out, nil
}

// SaveProject bookmarks a project for userID. Saving twice is a no-op.
func (s *Store) SaveProject(ctx context.Context, userID, projectID string) error {
	return s.mutate(ctx, "save project", func(u *unit) error {
		if _, err := u.project(projectID); err != nil {
			return err
		}
		if slices.Contains(u.st.savedProjects[userID], projectID) {
			return nil
		}
		u.setSavedProjects(userID, appendUnique(u.st.savedProjects[userID], projectID))
		return nil
	})
}

// UnsaveProject removes a bookmark.
func (s *Store) UnsaveProject(ctx context.Context, userID, projectID string) error {
	return s.mutate(ctx, "unsave project", func(u *unit) error {
		if !slices.Contains(u.st.savedProjects[userID], projectID) {
			return nil
		}
		u.setSavedProjects(userID, lo.Without(u.st.savedProjects[userID], projectID))
		return nil
	})
}

// GetSavedProjects returns the ids of projects userID saved that still exist.
func (s *Store) GetSavedProjects(userID string) []string {
	out := []string{}
	s.view(func(st *state) {
		for _, id := range st.savedProjects[userID] {
			if indexProject(st.projects, id) >= 0 {
				out = append(out, id)
			}
		}
	})
	return out
}

// appendUnique returns a new slice with id appended unless already present.
func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return slices.Clone(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}
