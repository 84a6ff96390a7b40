package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rtrove/internal/featureflags"
	"rtrove/internal/models"
	"rtrove/internal/storage"
)

// faultyKV wraps a KV and can fail or hold batch commits.
type faultyKV struct {
	storage.KV
	fail    atomic.Bool
	mu      sync.Mutex
	hold    chan struct{}
	entered chan struct{}
}

func (f *faultyKV) Apply(ctx context.Context, b *storage.Batch) error {
	f.mu.Lock()
	hold, entered := f.hold, f.entered
	f.mu.Unlock()
	if hold != nil {
		close(entered)
		<-hold
	}
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.KV.Apply(ctx, b)
}

// holdNext makes the next Apply block until release is called.
func (f *faultyKV) holdNext() (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
	f.entered = make(chan struct{})
	hold := f.hold
	return f.entered, func() {
		f.mu.Lock()
		f.hold, f.entered = nil, nil
		f.mu.Unlock()
		close(hold)
	}
}

type testEnv struct {
	store *Store
	kv    *faultyKV
	clock *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()

	db, err := storage.OpenBadger(storage.InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv := &faultyKV{KV: db}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(kv, Options{
		Flags:        featureflags.NewManager(flags),
		Now:          clock.Now,
		PasswordCost: bcrypt.MinCost,
	})
	require.NoError(t, s.Load(context.Background()))
	return &testEnv{store: s, kv: kv, clock: clock}
}

func newTestStore(t *testing.T) *Store {
	return newTestEnv(t, "").store
}

// reload builds a second store over the same backend, as a restart would.
func (e *testEnv) reload(t *testing.T) *Store {
	t.Helper()
	s := New(e.kv.KV, Options{PasswordCost: bcrypt.MinCost})
	require.NoError(t, s.Load(context.Background()))
	return s
}

func mustRegister(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), username, "secret")
	require.NoError(t, err)
	return u
}

func mustProject(t *testing.T, s *Store, creator *models.User, title string) *models.Project {
	t.Helper()
	ctx := context.Background()
	_, err := s.Login(ctx, creator.Username, "")
	require.NoError(t, err)
	p, err := s.AddProject(ctx, models.NewProject{
		Title:       title,
		Description: title + " description",
		PrimaryType: "Music",
		Tags:        []string{"indie"},
	})
	require.NoError(t, err)
	return p
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestLoad_EmptyBackend(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, s.IsLoaded())
	assert.Empty(t, s.GetAllUsers())
	assert.Empty(t, s.ListProjects())
	assert.Nil(t, s.CurrentUser())
	assert.False(t, s.IsAuthenticated())
}

func TestLoad_RestoresPersistedState(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	alice := mustRegister(t, env.store, "alice")
	p := mustProject(t, env.store, alice, "Album")
	require.NoError(t, env.store.SaveProject(ctx, alice.ID, p.ID))

	reloaded := env.reload(t)

	current := reloaded.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, alice.ID, current.ID)

	got, err := reloaded.GetProjectByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Album", got.Title)
	assert.Equal(t, []string{p.ID}, reloaded.GetSavedProjects(alice.ID))
	assert.Len(t, reloaded.GetUserCreatedProjects(alice.ID), 1)
}

func TestLoad_CorruptCollectionIsEmpty(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	mustRegister(t, env.store, "alice")
	require.NoError(t, env.kv.Set(ctx, storage.PostsKey, []byte("{broken")))

	reloaded := env.reload(t)
	assert.Empty(t, reloaded.ListPosts())
	assert.Len(t, reloaded.GetAllUsers(), 1)
}

func TestMutation_FailedWriteLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	alice := mustRegister(t, env.store, "alice")
	bob := mustRegister(t, env.store, "bob")
	p := mustProject(t, env.store, alice, "Album")

	env.kv.fail.Store(true)
	_, err := env.store.ToggleProjectParticipation(ctx, p.ID, bob.ID)
	assertAppError(t, err, models.CodeStorage, "Failed to toggle project participation")
	assert.Error(t, errors.Unwrap(err))

	got, err := env.store.GetProjectByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Collaborators.Len())
	user, err := env.store.GetUser(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.ProjectsJoined)

	env.kv.fail.Store(false)
	reloaded := env.reload(t)
	got, err = reloaded.GetProjectByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Collaborators.Len())
}

func TestQueries_ReturnCopies(t *testing.T) {
	s := newTestStore(t)
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	got, err := s.GetProjectByID(p.ID)
	require.NoError(t, err)
	got.Title = "changed"
	got.Tags[0] = "changed"

	again, err := s.GetProjectByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Album", again.Title)
	assert.Equal(t, []string{"indie"}, again.Tags)
}
