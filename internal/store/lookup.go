package store

import (
	"slices"

	"rtrove/internal/models"
)

func indexUser(users []models.User, id string) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
}

func indexUsername(users []models.User, username string) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.Username == username })
}

func indexProject(projects []models.Project, id string) int {
	return slices.IndexFunc(projects, func(p models.Project) bool { return p.ID == id })
}

func indexPost(posts []models.Post, id string) int {
	return slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id })
}

func indexForumPost(posts []models.ForumPost, id string) int {
	return slices.IndexFunc(posts, func(p models.ForumPost) bool { return p.ID == id })
}

func indexChat(chats []models.Chat, id string) int {
	return slices.IndexFunc(chats, func(c models.Chat) bool { return c.ID == id })
}

func indexFolderView(views []models.FolderView, id string) int {
	return slices.IndexFunc(views, func(v models.FolderView) bool { return v.ID == id })
}

func (u *unit) user(id string) (int, error) {
	i := indexUser(u.st.users, id)
	if i < 0 {
		return -1, models.NewNotFoundError("User not found")
	}
	return i, nil
}

func (u *unit) project(id string) (int, error) {
	i := indexProject(u.st.projects, id)
	if i < 0 {
		return -1, models.NewNotFoundError("Project not found")
	}
	return i, nil
}

func (u *unit) post(id string) (int, error) {
	i := indexPost(u.st.posts, id)
	if i < 0 {
		return -1, models.NewNotFoundError("Post not found")
	}
	return i, nil
}

func (u *unit) forumPost(id string) (int, error) {
	i := indexForumPost(u.st.forumPosts, id)
	if i < 0 {
		return -1, models.NewNotFoundError("Forum post not found")
	}
	return i, nil
}

// cloneProjects deep-copies a slice of projects.
func cloneProjects(in []models.Project) []models.Project {
	out := make([]models.Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func clonePosts(in []models.Post) []models.Post {
	out := make([]models.Post, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// joinedCount is the number of projects listing userID as collaborator.
func joinedCount(projects []models.Project, userID string) int {
	n := 0
	for _, p := range projects {
		if p.Collaborators.Contains(userID) {
			n++
		}
	}
	return n
}

// recountJoined recomputes ProjectsJoined for every user whose count drifted.
func (u *unit) recountJoined() {
	users := u.st.users
	changed := false
	for i := range users {
		n := joinedCount(u.st.projects, users[i].ID)
		if users[i].ProjectsJoined != n {
			if !changed {
				users = slices.Clone(users)
				changed = true
			}
			users[i].ProjectsJoined = n
		}
	}
	if changed {
		u.setUsers(users)
	}
}
