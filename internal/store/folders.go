package store

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"rtrove/internal/models"
)

// CreateFolderView saves a feed filter. An id is assigned when view has none.
func (s *Store) CreateFolderView(ctx context.Context, view models.FolderView) (*models.FolderView, error) {
	if err := s.validate.Struct(view); err != nil {
		return nil, validationError(err)
	}
	err := s.mutate(ctx, "create folder view", func(u *unit) error {
		if view.ID == "" {
			view.ID = s.newID()
		}
		if indexFolderView(u.st.folderViews, view.ID) >= 0 {
			return models.NewValidationError("Folder view already exists")
		}
		u.setFolderViews(append(u.st.folderViews, view))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateFolderView replaces a saved filter.
func (s *Store) UpdateFolderView(ctx context.Context, view models.FolderView) error {
	if err := s.validate.Struct(view); err != nil {
		return validationError(err)
	}
	return s.mutate(ctx, "update folder view", func(u *unit) error {
		i := indexFolderView(u.st.folderViews, view.ID)
		if i < 0 {
			return models.NewNotFoundError("Folder view not found")
		}
		u.st.folderViews[i] = view
		u.setFolderViews(u.st.folderViews)
		return nil
	})
}

// DeleteFolderView removes a saved filter.
func (s *Store) DeleteFolderView(ctx context.Context, viewID string) error {
	return s.mutate(ctx, "delete folder view", func(u *unit) error {
		i := indexFolderView(u.st.folderViews, viewID)
		if i < 0 {
			return models.NewNotFoundError("Folder view not found")
		}
		u.setFolderViews(slices.Delete(u.st.folderViews, i, i+1))
		return nil
	})
}

// GetFolderViews returns every saved filter.
func (s *Store) GetFolderViews() []models.FolderView {
	var out []models.FolderView
	s.view(func(st *state) {
		out = slices.Clone(st.folderViews)
	})
	return nonNil(out)
}

// ApplyFolderView runs a saved filter.
func (s *Store) ApplyFolderView(viewID string) ([]models.FeedItem, error) {
	var (
		view  models.FolderView
		found bool
	)
	s.view(func(st *state) {
		if i := indexFolderView(st.folderViews, viewID); i >= 0 {
			view, found = st.folderViews[i], true
		}
	})
	if !found {
		return nil, models.NewNotFoundError("Folder view not found")
	}
	return s.FilterFeed(view.Filters), nil
}

// FilterFeed returns the projects and posts matching filters, newest first.
//
// Projects match on creator (case-insensitive substring), primary type and
// tags (case-insensitive equality). Posts match on exact author username.
// Both honor the time range; empty lists match everything.
func (s *Store) FilterFeed(filters models.FolderFilters) []models.FeedItem {
	items := []models.FeedItem{}

	s.view(func(st *state) {
		if filters.IncludeProjects {
			for _, p := range st.projects {
				if projectMatches(p, filters) {
					p := p.Clone()
					items = append(items, models.FeedItem{Type: models.FeedItemProject, CreatedAt: p.CreatedAt, Project: &p})
				}
			}
		}

		if filters.IncludePosts {
			authors := make(map[string]bool)
			for _, u := range st.users {
				if len(filters.Usernames) == 0 || slices.Contains(filters.Usernames, u.Username) {
					authors[u.ID] = true
				}
			}
			for _, p := range st.posts {
				created := p.CreatedAt.Time()
				if authors[p.UserID] && filters.TimeRange.Contains(created) {
					p := p.Clone()
					items = append(items, models.FeedItem{Type: models.FeedItemPost, CreatedAt: created, Post: &p})
				}
			}
		}
	})

	slices.SortStableFunc(items, func(a, b models.FeedItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items
}

func projectMatches(p models.Project, f models.FolderFilters) bool {
	if !f.TimeRange.Contains(p.CreatedAt) {
		return false
	}
	creator := strings.ToLower(p.Creator)
	if len(f.Usernames) > 0 && !lo.SomeBy(f.Usernames, func(name string) bool {
		return strings.Contains(creator, strings.ToLower(name))
	}) {
		return false
	}
	if len(f.ProjectTypes) > 0 && !lo.SomeBy(f.ProjectTypes, func(t string) bool {
		return strings.EqualFold(p.PrimaryType, t)
	}) {
		return false
	}
	if len(f.Tags) > 0 && !lo.SomeBy(f.Tags, func(tag string) bool {
		return lo.SomeBy(p.Tags, func(pt string) bool { return strings.EqualFold(pt, tag) })
	}) {
		return false
	}
	return true
}
