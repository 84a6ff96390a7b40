package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"rtrove/internal/models"
	"rtrove/internal/storage"
)

// migrate folds data kept under retired keys into st and persists the
// result in one batch, deleting the retired keys. It writes nothing when no
// retired key is present.
func (s *Store) migrate(ctx context.Context, st state) (state, error) {
	u := &unit{st: st, batch: storage.NewBatch()}

	if err := migrateLikes(ctx, s.kv, u); err != nil {
		return st, err
	}
	if err := migrateFundraising(ctx, s.kv, u); err != nil {
		return st, err
	}
	if u.batch.Len() == 0 {
		return st, nil
	}

	u.syncSession()
	if u.err != nil {
		return st, u.err
	}
	if err := s.kv.Apply(ctx, u.batch); err != nil {
		return st, err
	}
	s.log.LogMutation(ctx, "migrate", map[string]any{"writes": u.batch.Len()})
	return u.st, nil
}

// migrateLikes moves per-project like lists into Project.Likes.
func migrateLikes(ctx context.Context, kv storage.KV, u *unit) error {
	keys, err := kv.Keys(ctx, storage.LikesKeyPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	legacy, err := loadIndex(ctx, kv, storage.LikesKeyPrefix)
	if err != nil {
		return err
	}

	changed := false
	for i, p := range u.st.projects {
		for _, id := range legacy[p.ID] {
			if !u.st.projects[i].Likes.Contains(id) {
				u.st.projects[i].Likes = u.st.projects[i].Likes.With(id)
				changed = true
			}
		}
	}
	if changed {
		u.setProjects(u.st.projects)
	}
	for _, key := range keys {
		u.batch.Delete(key)
	}
	return nil
}

// migrateFundraising moves the per-project goal and commitment maps into
// the projects. The per-user totals map is dropped; totals are recounted
// from the ledger.
func migrateFundraising(ctx context.Context, kv storage.KV, u *unit) error {
	found := false
	for _, key := range storage.LegacyFundraisingKeys {
		if _, err := kv.Get(ctx, key); err == nil {
			found = true
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	if !found {
		return nil
	}

	goals, _, err := storage.LoadJSON[map[string]float64](ctx, kv, storage.FundraisingGoalsKey)
	if err != nil {
		return err
	}
	commitments, _, err := storage.LoadJSON[map[string][]models.Commitment](ctx, kv, storage.ProjectCommitmentsKey)
	if err != nil {
		return err
	}

	changed := false
	for i := range u.st.projects {
		p := &u.st.projects[i]
		if goal, ok := goals[p.ID]; ok && goal > 0 && p.FundraisingGoal == nil {
			p.FundraisingGoal = &goal
			changed = true
		}
		if folded := foldCommitments(p.Commitments, commitments[p.ID], u.st.users); len(folded) != len(p.Commitments) {
			p.Commitments = folded
			changed = true
		}
	}
	if changed {
		u.setProjects(u.st.projects)
		u.recountContributions()
	}
	for _, key := range storage.LegacyFundraisingKeys {
		u.batch.Delete(key)
	}
	return nil
}

// foldCommitments adds the valid legacy entries missing from ledger and
// keeps the result in pledge order.
func foldCommitments(ledger, legacy []models.Commitment, users []models.User) []models.Commitment {
	out := slices.Clone(ledger)
	for _, c := range legacy {
		if c.UserID == "" || c.Amount <= 0 {
			continue
		}
		if slices.ContainsFunc(out, func(e models.Commitment) bool {
			return e.UserID == c.UserID && e.Amount == c.Amount && e.Timestamp == c.Timestamp
		}) {
			continue
		}
		if c.Username == "" {
			if i := indexUser(users, c.UserID); i >= 0 {
				c.Username = users[i].Username
			}
		}
		out = append(out, c)
	}
	if len(out) == len(ledger) {
		return ledger
	}
	slices.SortStableFunc(out, func(a, b models.Commitment) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}
