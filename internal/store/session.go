package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rtrove/internal/featureflags"
	"rtrove/internal/models"
	"rtrove/internal/storage"
)

// DefaultAvatarURL is the placeholder avatar for new accounts.
const DefaultAvatarURL = "https://picsum.photos/seed/%s/200"

// Login starts a session for username. The password is only verified when
// the password_check flag is on.
func (s *Store) Login(ctx context.Context, username, password string) (*models.User, error) {
	var session models.User
	err := s.mutate(ctx, "login", func(u *unit) error {
		i := indexUsername(u.st.users, username)
		if i < 0 {
			return models.NewNotFoundError("User not found")
		}
		user := u.st.users[i]

		if s.flags.Enabled(featureflags.PasswordCheck, user.ID) {
			if user.PasswordHash == "" {
				return models.NewUnauthorizedError("Invalid credentials")
			}
			err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return models.NewUnauthorizedError("Invalid credentials")
			}
			if err != nil {
				return err
			}
		}

		session = user
		u.setSession(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account with default profile fields and starts a session for it.
func (s *Store) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}

	var created models.User
	err := s.mutate(ctx, "register", func(u *unit) error {
		if indexUsername(u.st.users, username) >= 0 {
			return models.NewValidationError("Username already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return err
		}

		created = models.User{
			ID:           s.newID(),
			Username:     username,
			Name:         username,
			Avatar:       fmt.Sprintf(DefaultAvatarURL, username),
			ArtType:      "New Artist",
			Location:     "Unknown",
			CreatedAt:    s.now(),
			PasswordHash: string(hash),
		}
		u.setUsers(append(u.st.users, created))
		session := created
		u.setSession(&session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Logout ends the session.
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, "logout", func(u *unit) error {
		u.setSession(nil)
		return nil
	})
}

// CurrentUser returns the session user, or nil when anonymous.
func (s *Store) CurrentUser() *models.User {
	var out *models.User
	s.view(func(st *state) {
		if st.session != nil {
			u := *st.session
			out = &u
		}
	})
	return out
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// UpdateUserProfile merges patch into the user's profile.
func (s *Store) UpdateUserProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	var updated models.User
	err := s.mutate(ctx, "update user profile", func(u *unit) error {
		i, err := u.user(userID)
		if err != nil {
			return err
		}
		patch.Apply(&u.st.users[i])
		updated = u.st.users[i]
		u.setUsers(u.st.users)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetUser returns the user with id.
func (s *Store) GetUser(id string) (*models.User, error) {
	var out *models.User
	s.view(func(st *state) {
		if i := indexUser(st.users, id); i >= 0 {
			u := st.users[i]
			out = &u
		}
	})
	if out == nil {
		return nil, models.NewNotFoundError("User not found")
	}
	return out, nil
}

// GetUserByUsername returns the user with an exactly matching username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var out *models.User
	s.view(func(st *state) {
		if i := indexUsername(st.users, username); i >= 0 {
			u := st.users[i]
			out = &u
		}
	})
	if out == nil {
		return nil, models.NewNotFoundError("User not found")
	}
	return out, nil
}

// GetAllUsers returns every user in registration order.
func (s *Store) GetAllUsers() []models.User {
	var out []models.User
	s.view(func(st *state) {
		out = slices.Clone(st.users)
	})
	return nonNil(out)
}

// GetCreatedUsers returns every user, most recently created first.
func (s *Store) GetCreatedUsers() []models.User {
	users := s.GetAllUsers()
	slices.SortStableFunc(users, func(a, b models.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users
}

// ResolveUsers returns the users for ids, skipping ids that no longer exist.
func (s *Store) ResolveUsers(ids []string) []models.User {
	out := make([]models.User, 0, len(ids))
	s.view(func(st *state) {
		for _, id := range ids {
			if i := indexUser(st.users, id); i >= 0 {
				out = append(out, st.users[i])
			}
		}
	})
	return out
}

// DeleteUserProfile removes a user and every reference to them in one commit.
func (s *Store) DeleteUserProfile(ctx context.Context, userID string) error {
	return s.mutate(ctx, "delete user profile", func(u *unit) error {
		if _, err := u.user(userID); err != nil {
			return err
		}

		// Projects they created go first so the project cascade sees them.
		for _, p := range slices.Clone(u.st.projects) {
			if p.CreatorID == userID {
				u.removeProject(p.ID)
			}
		}

		users := make([]models.User, 0, len(u.st.users))
		for _, other := range u.st.users {
			if other.ID == userID {
				continue
			}
			other.Following = other.Following.Without(userID)
			other.Followers = other.Followers.Without(userID)
			users = append(users, other)
		}
		u.setUsers(users)

		projects := make([]models.Project, 0, len(u.st.projects))
		for _, p := range u.st.projects {
			p.Collaborators = p.Collaborators.Without(userID)
			p.Likes = p.Likes.Without(userID)
			projects = append(projects, p)
		}
		u.setProjects(projects)
		u.recountContributions()

		posts := make([]models.Post, 0, len(u.st.posts))
		for _, p := range u.st.posts {
			if p.UserID == userID {
				continue
			}
			p.Likes = p.Likes.Without(userID)
			p.Comments = slices.DeleteFunc(slices.Clone(p.Comments), func(c models.PostComment) bool {
				return c.UserID == userID
			})
			posts = append(posts, p)
		}
		u.setPosts(posts)

		forum := make([]models.ForumPost, 0, len(u.st.forumPosts))
		for _, fp := range u.st.forumPosts {
			if fp.UserID == userID {
				continue
			}
			fp.Comments = withoutForumComments(fp.Comments, func(c models.ForumComment) bool {
				return c.UserID == userID
			})
			forum = append(forum, fp)
		}
		u.setForumPosts(forum)

		u.setChats(slices.DeleteFunc(slices.Clone(u.st.chats), func(c models.Chat) bool {
			return c.UserID == userID
		}))

		delete(u.st.savedProjects, userID)
		delete(u.st.userProjects, userID)
		for _, key := range storage.UserKeys(userID) {
			u.batch.Delete(key)
		}
		u.recountJoined()
		return nil
	})
}
