package store

import (
	"context"

	"rtrove/internal/models"
)

// FollowUser makes followerID follow followingID. Both sides of the edge are
// written in the same commit.
func (s *Store) FollowUser(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return models.NewValidationError("Users cannot follow themselves")
	}
	return s.mutate(ctx, "follow user", func(u *unit) error {
		fi, err := u.user(followerID)
		if err != nil {
			return err
		}
		ti, err := u.user(followingID)
		if err != nil {
			return err
		}
		u.st.users[fi].Following = u.st.users[fi].Following.With(followingID)
		u.st.users[ti].Followers = u.st.users[ti].Followers.With(followerID)
		u.setUsers(u.st.users)
		return nil
	})
}

// UnfollowUser removes the follow edge in both directions.
func (s *Store) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	return s.mutate(ctx, "unfollow user", func(u *unit) error {
		fi, err := u.user(followerID)
		if err != nil {
			return err
		}
		u.st.users[fi].Following = u.st.users[fi].Following.Without(followingID)
		// The followee may already be gone; the follower side still gets cleaned.
		if ti := indexUser(u.st.users, followingID); ti >= 0 {
			u.st.users[ti].Followers = u.st.users[ti].Followers.Without(followerID)
		}
		u.setUsers(u.st.users)
		return nil
	})
}

// GetFollowers returns the users following userID.
func (s *Store) GetFollowers(userID string) ([]models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return s.ResolveUsers(user.Followers.Slice()), nil
}

// GetFollowing returns the users userID follows.
func (s *Store) GetFollowing(userID string) ([]models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return s.ResolveUsers(user.Following.Slice()), nil
}
