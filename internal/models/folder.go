package models

import "time"

// FolderView is a saved filter over the combined project and post feed.
type FolderView struct {
	ID      string        `json:"id"`
	Name    string        `json:"name" validate:"required"`
	Filters FolderFilters `json:"filters"`
}

// TimeRange bounds a feed by creation time. Either end may be open.
type TimeRange struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Contains reports whether t falls within the range, bounds inclusive.
func (r TimeRange) Contains(t time.Time) bool {
	if r.StartDate != nil && t.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && t.After(*r.EndDate) {
		return false
	}
	return true
}

// FolderFilters selects feed content. Empty lists match everything.
type FolderFilters struct {
	TimeRange       TimeRange `json:"timeRange"`
	Usernames       []string  `json:"username"`
	ProjectTypes    []string  `json:"projectType"`
	Tags            []string  `json:"tags"`
	IncludeProjects bool      `json:"includeProjects"`
	IncludePosts    bool      `json:"includePosts"`
}

// Feed item kinds.
const (
	FeedItemProject = "project"
	FeedItemPost    = "post"
)

// FeedItem is one entry of a filtered feed.
type FeedItem struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Project   *Project  `json:"project,omitempty"`
	Post      *Post     `json:"post,omitempty"`
}
