// Package store implements the local data store: in-memory mirrors of every
// collection, kept in step with a key-value backend.
//
// Mutations are serialized. Each one works on a copy of the state, stages the
// touched collections in a single storage batch and swaps the copy in only
// after the batch commits, so memory and storage never disagree after a
// failed write. Queries read memory only and return copies.
package store

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rtrove/internal/featureflags"
	"rtrove/internal/models"
	"rtrove/internal/observability"
	"rtrove/internal/storage"
)

// Options tune a Store. Zero values are replaced by defaults.
type Options struct {
	Flags *featureflags.Manager
	Now   func() time.Time
	NewID func() string
	// PasswordCost is the bcrypt cost for new password hashes.
	PasswordCost int
}

// Store is the process-wide data store.
type Store struct {
	kv       storage.KV
	flags    *featureflags.Manager
	validate *validator.Validate
	log      *observability.StoreLogger
	now      func() time.Time
	newID    func() string
	cost     int

	// writeMu serializes mutations end to end; mu guards st for readers.
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      state
	loaded  bool
}

type state struct {
	users         []models.User
	session       *models.User
	projects      []models.Project
	posts         []models.Post
	chats         []models.Chat
	forumPosts    []models.ForumPost
	folderViews   []models.FolderView
	savedProjects map[string][]string
	userProjects  map[string][]string
}

func (st state) snapshot() state {
	out := state{
		users:         append([]models.User(nil), st.users...),
		projects:      append([]models.Project(nil), st.projects...),
		posts:         append([]models.Post(nil), st.posts...),
		chats:         append([]models.Chat(nil), st.chats...),
		forumPosts:    append([]models.ForumPost(nil), st.forumPosts...),
		folderViews:   append([]models.FolderView(nil), st.folderViews...),
		savedProjects: maps.Clone(st.savedProjects),
		userProjects:  maps.Clone(st.userProjects),
	}
	if st.session != nil {
		u := *st.session
		out.session = &u
	}
	if out.savedProjects == nil {
		out.savedProjects = map[string][]string{}
	}
	if out.userProjects == nil {
		out.userProjects = map[string][]string{}
	}
	return out
}

// New creates a store over kv. Call Load before use.
func New(kv storage.KV, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	return &Store{
		kv:       kv,
		flags:    opts.Flags,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      observability.NewStoreLogger("store"),
		now:      opts.Now,
		newID:    opts.NewID,
		cost:     opts.PasswordCost,
		st:       state{}.snapshot(),
	}
}

// Load reads every collection from storage and restores the session.
// Missing or corrupt collections load as empty. Data found under retired
// keys is folded in and the retired keys are removed.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	st, err := s.read(ctx)
	if err == nil {
		st, err = s.migrate(ctx, st)
	}
	if err != nil {
		s.log.LogError(ctx, err, "load")
		observability.RecordOperation("load", err)
		return models.NewStorageError("load data", err)
	}

	s.mu.Lock()
	s.st = st
	s.loaded = true
	s.mu.Unlock()

	observability.RecordOperation("load", nil)
	s.log.LogMutation(ctx, "load", map[string]any{
		"users":    len(st.users),
		"projects": len(st.projects),
		"posts":    len(st.posts),
	})
	return nil
}

func (s *Store) read(ctx context.Context) (state, error) {
	st := state{}.snapshot()
	var err error

	if st.users, err = loadList[models.User](ctx, s.kv, storage.UsersKey); err != nil {
		return st, err
	}
	if st.projects, err = loadList[models.Project](ctx, s.kv, storage.ProjectsKey); err != nil {
		return st, err
	}
	if st.posts, err = loadList[models.Post](ctx, s.kv, storage.PostsKey); err != nil {
		return st, err
	}
	if st.chats, err = loadList[models.Chat](ctx, s.kv, storage.ChatsKey); err != nil {
		return st, err
	}
	if st.forumPosts, err = loadList[models.ForumPost](ctx, s.kv, storage.ForumPostsKey); err != nil {
		return st, err
	}
	if st.folderViews, err = loadList[models.FolderView](ctx, s.kv, storage.FolderViewsKey); err != nil {
		return st, err
	}

	session, found, err := storage.LoadJSON[models.User](ctx, s.kv, storage.CurrentUserKey)
	if err != nil {
		return st, err
	}
	if found && session.ID != "" {
		// The users collection is authoritative over the snapshot.
		if i := indexUser(st.users, session.ID); i >= 0 {
			u := st.users[i]
			st.session = &u
		}
	}

	if st.savedProjects, err = loadIndex(ctx, s.kv, storage.KeyPrefix+"saved_projects_"); err != nil {
		return st, err
	}
	if st.userProjects, err = loadIndex(ctx, s.kv, storage.KeyPrefix+"projects_"); err != nil {
		return st, err
	}

	return st, nil
}

func loadList[T any](ctx context.Context, kv storage.KV, key string) ([]T, error) {
	items, _, err := storage.LoadJSON[[]T](ctx, kv, key)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// loadIndex reads every "<prefix><id>" key holding an id list.
func loadIndex(ctx context.Context, kv storage.KV, prefix string) (map[string][]string, error) {
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(keys))
	for _, key := range keys {
		ids, found, err := storage.LoadJSON[[]string](ctx, kv, key)
		if err != nil {
			return nil, err
		}
		if found && len(ids) > 0 {
			out[strings.TrimPrefix(key, prefix)] = ids
		}
	}
	return out, nil
}

// IsLoaded reports whether Load has completed.
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// view runs fn against the current state under the read lock.
func (s *Store) view(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.st)
}

// mutate runs fn as one unit of work. failure names the operation in the
// "Failed to ..." message returned when the commit fails.
func (s *Store) mutate(ctx context.Context, failure string, fn func(u *unit) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	u := s.begin()
	if err := fn(u); err != nil {
		observability.RecordOperation(failure, err)
		return err
	}
	if err := s.commit(ctx, failure, u); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = u.st
	s.mu.Unlock()
	return nil
}

func (s *Store) begin() *unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &unit{st: s.st.snapshot(), batch: storage.NewBatch()}
}

func (s *Store) commit(ctx context.Context, failure string, u *unit) error {
	u.syncSession()

	err := u.err
	if err == nil {
		err = s.kv.Apply(ctx, u.batch)
	}
	observability.RecordOperation(failure, err)
	if err != nil {
		s.log.LogError(ctx, err, failure)
		return models.NewStorageError(failure, err)
	}
	s.log.LogMutation(ctx, failure, map[string]any{"writes": u.batch.Len()})
	return nil
}

// unit is a working copy of the state plus the batch that persists it.
// Collections must be replaced through the set methods so the batch stays
// in step with the copy.
type unit struct {
	st           state
	batch        *storage.Batch
	usersChanged bool
	err          error
}

func (u *unit) put(key string, v any) {
	if err := u.batch.Put(key, v); err != nil && u.err == nil {
		u.err = err
	}
}

func (u *unit) setUsers(users []models.User) {
	u.st.users = nonNil(users)
	u.usersChanged = true
	u.put(storage.UsersKey, u.st.users)
}

func (u *unit) setProjects(projects []models.Project) {
	u.st.projects = nonNil(projects)
	u.put(storage.ProjectsKey, u.st.projects)
}

func (u *unit) setPosts(posts []models.Post) {
	u.st.posts = nonNil(posts)
	u.put(storage.PostsKey, u.st.posts)
}

func (u *unit) setChats(chats []models.Chat) {
	u.st.chats = nonNil(chats)
	u.put(storage.ChatsKey, u.st.chats)
}

func (u *unit) setForumPosts(posts []models.ForumPost) {
	u.st.forumPosts = nonNil(posts)
	u.put(storage.ForumPostsKey, u.st.forumPosts)
}

func (u *unit) setFolderViews(views []models.FolderView) {
	u.st.folderViews = nonNil(views)
	u.put(storage.FolderViewsKey, u.st.folderViews)
}

func (u *unit) setSavedProjects(userID string, ids []string) {
	setIndex(u, u.st.savedProjects, storage.SavedProjectsKey(userID), userID, ids)
}

func (u *unit) setUserProjects(userID string, ids []string) {
	setIndex(u, u.st.userProjects, storage.UserProjectsKey(userID), userID, ids)
}

func setIndex(u *unit, index map[string][]string, key, userID string, ids []string) {
	if len(ids) == 0 {
		delete(index, userID)
		u.batch.Delete(key)
		return
	}
	index[userID] = ids
	u.put(key, ids)
}

func (u *unit) setSession(user *models.User) {
	u.st.session = user
	if user == nil {
		u.batch.Delete(storage.CurrentUserKey)
		return
	}
	u.put(storage.CurrentUserKey, user)
}

// syncSession re-mirrors the session snapshot after the users collection changed.
func (u *unit) syncSession() {
	if !u.usersChanged || u.st.session == nil {
		return
	}
	i := indexUser(u.st.users, u.st.session.ID)
	if i < 0 {
		u.setSession(nil)
		return
	}
	current := u.st.users[i]
	u.setSession(&current)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// validationError turns a validator failure into a VALIDATION_ERROR.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fe.Field() + " is required")
	case "gt":
		return models.NewValidationError(fe.Field() + " must be greater than " + fe.Param())
	default:
		return models.NewValidationError(fe.Field() + " is invalid")
	}
}
