package seed

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"rtrove/internal/storage"
	"rtrove/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	kv, err := storage.OpenBadger(storage.InMemoryBadgerConfig())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	st := store.New(kv, store.Options{PasswordCost: bcrypt.MinCost})
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return st
}

func TestRun_CreatesRequestedCounts(t *testing.T) {
	st := newStore(t)

	sum, err := Run(context.Background(), st, Options{NumUsers: 5, NumProjects: 4, NumPosts: 6, Seed: 42})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Users != 5 || sum.Projects != 4 || sum.Posts != 6 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if got := len(st.GetAllUsers()); got != 5 {
		t.Fatalf("users: got %d", got)
	}
	if got := len(st.ListProjects()); got != 4 {
		t.Fatalf("projects: got %d", got)
	}
	if got := len(st.ListPosts()); got != 6 {
		t.Fatalf("posts: got %d", got)
	}
	if st.IsAuthenticated() {
		t.Fatalf("seed should leave the store logged out")
	}
}

func TestRun_KeepsFollowEdgesSymmetric(t *testing.T) {
	st := newStore(t)

	if _, err := Run(context.Background(), st, Options{NumUsers: 6, Seed: 7}); err != nil {
		t.Fatalf("run: %v", err)
	}
	users := st.GetAllUsers()
	byID := make(map[string]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}
	for _, u := range users {
		for _, id := range u.Following.Slice() {
			other := users[byID[id]]
			if !other.Followers.Contains(u.ID) {
				t.Fatalf("%s follows %s but is missing from their followers", u.Username, other.Username)
			}
		}
	}
}

func TestRun_ContributionsMatchLedger(t *testing.T) {
	st := newStore(t)

	if _, err := Run(context.Background(), st, Options{NumUsers: 4, NumProjects: 6, Seed: 3}); err != nil {
		t.Fatalf("run: %v", err)
	}
	totals := map[string]float64{}
	for _, p := range st.ListProjects() {
		for _, c := range st.GetProjectCommitments(p.ID) {
			totals[c.UserID] += c.Amount
		}
	}
	for _, u := range st.GetAllUsers() {
		if u.Contributions != totals[u.ID] {
			t.Fatalf("%s contributions = %v, ledger says %v", u.Username, u.Contributions, totals[u.ID])
		}
	}
}

func TestRun_NoUsers(t *testing.T) {
	st := newStore(t)

	sum, err := Run(context.Background(), st, Options{NumProjects: 3})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Users != 0 || sum.Projects != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}
}
