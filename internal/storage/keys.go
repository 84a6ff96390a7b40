package storage

import "fmt"

// KeyPrefix namespaces every key written by the store.
const KeyPrefix = "rtrove_v2_"

// Collection keys.
const (
	UsersKey       = KeyPrefix + "users"
	CurrentUserKey = KeyPrefix + "current_user"
	ProjectsKey    = KeyPrefix + "projects"
	PostsKey       = KeyPrefix + "posts"
	ChatsKey       = KeyPrefix + "chats"
	ForumPostsKey  = KeyPrefix + "forum_posts"
	FolderViewsKey = KeyPrefix + "folder_views"
)

// Per-entity key formats.
const (
	SavedProjectsKeyFormat = KeyPrefix + "saved_projects_%s"
	UserProjectsKeyFormat  = KeyPrefix + "projects_%s"
	LikesKeyFormat         = KeyPrefix + "likes_%s"
)

// LikesKeyPrefix prefixes every retired per-project like list.
const LikesKeyPrefix = KeyPrefix + "likes_"

// Retired fundraising maps, keyed by project id. They are folded into the
// projects collection on load and then deleted.
const (
	FundraisingGoalsKey   = KeyPrefix + "fundraising_goals"
	ProjectCommitmentsKey = KeyPrefix + "project_commitments"
	UserContributionsKey  = KeyPrefix + "user_contributions"
)

// LegacyFundraisingKeys lists the retired fundraising keys.
var LegacyFundraisingKeys = []string{FundraisingGoalsKey, ProjectCommitmentsKey, UserContributionsKey}

// CollectionKeys lists the keys loaded at start-up.
var CollectionKeys = []string{
	UsersKey,
	CurrentUserKey,
	ProjectsKey,
	PostsKey,
	ChatsKey,
	ForumPostsKey,
	FolderViewsKey,
}

// SavedProjectsKey holds the ids of projects saved by a user.
func SavedProjectsKey(userID string) string {
	return fmt.Sprintf(SavedProjectsKeyFormat, userID)
}

// UserProjectsKey holds the ids of projects created by a user.
func UserProjectsKey(userID string) string {
	return fmt.Sprintf(UserProjectsKeyFormat, userID)
}

// LikesKey holds the retired like list of a project.
func LikesKey(projectID string) string {
	return fmt.Sprintf(LikesKeyFormat, projectID)
}

// UserKeys returns every per-user key owned by userID.
func UserKeys(userID string) []string {
	return []string{SavedProjectsKey(userID), UserProjectsKey(userID)}
}
