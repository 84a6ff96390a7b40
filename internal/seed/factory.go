package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"rtrove/internal/models"
	"rtrove/internal/store"
)

// Factory builds demo entities through a store.
type Factory struct {
	store *store.Store
	opts  Options
	faker *gofakeit.Faker
}

// NewFactory creates a new Factory bound to st.
func NewFactory(st *store.Store, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{store: st, opts: opts, faker: gofakeit.New(seed)}
}

// CreateUser registers a user and fills in a profile. The store session is
// left on the new user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.UserPatch)) (*models.User, error) {
	username := strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(100, 999))
	for {
		if _, err := f.store.GetUserByUsername(username); err != nil {
			break
		}
		username += fmt.Sprintf("%d", f.faker.Number(0, 9))
	}

	user, err := f.store.Register(ctx, username, DefaultPassword)
	if err != nil {
		return nil, err
	}

	name := f.faker.FirstName() + " " + f.faker.LastName()
	bio := f.faker.Sentence(10)
	location := f.faker.City()
	artType := f.faker.RandomString(artTypes)
	avatar := fmt.Sprintf("https://picsum.photos/seed/%s/200", f.faker.UUID())
	patch := models.UserPatch{
		Name:     &name,
		Bio:      &bio,
		Location: &location,
		ArtType:  &artType,
		Avatar:   &avatar,
	}
	for _, override := range overrides {
		override(&patch)
	}
	return f.store.UpdateUserProfile(ctx, user.ID, patch)
}

// CreateUsers registers n users.
func (f *Factory) CreateUsers(ctx context.Context, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return users, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// Follow wires each user to up to three random others and returns the
// number of edges created.
func (f *Factory) Follow(ctx context.Context, users []models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	edges := 0
	for _, u := range users {
		for _, target := range f.pick(users, f.faker.Number(1, 3)) {
			if target.ID == u.ID {
				continue
			}
			if err := f.store.FollowUser(ctx, u.ID, target.ID); err != nil {
				return edges, err
			}
			edges++
		}
	}
	return edges, nil
}

// CreateProject logs in as creator and adds a project.
func (f *Factory) CreateProject(ctx context.Context, creator models.User) (*models.Project, error) {
	if _, err := f.store.Login(ctx, creator.Username, DefaultPassword); err != nil {
		return nil, err
	}

	primary := f.faker.RandomString(projectTypes)
	var additional []string
	if f.faker.Bool() {
		additional = []string{f.faker.RandomString(projectTypes)}
	}
	tags := append([]string(nil), tagPool...)
	f.faker.ShuffleStrings(tags)
	tags = tags[:f.faker.Number(1, 3)]

	in := models.NewProject{
		Title:           strings.TrimSuffix(f.faker.Sentence(3), "."),
		Description:     f.faker.Paragraph(1, 2, 8, " "),
		PrimaryType:     primary,
		AdditionalTypes: additional,
		Tags:            tags,
	}
	if f.faker.Number(0, 2) == 0 {
		goal := float64(f.faker.Number(5, 50) * 100)
		in.FundraisingGoal = &goal
	}
	return f.store.AddProject(ctx, in)
}

// PopulateProject adds collaborators, likes, chat, a forum thread and
// pledges to p.
func (f *Factory) PopulateProject(ctx context.Context, p models.Project, users []models.User, sum *Summary) error {
	for _, u := range f.pick(users, f.faker.Number(0, 3)) {
		if u.ID == p.CreatorID {
			continue
		}
		if _, err := f.store.ToggleProjectParticipation(ctx, p.ID, u.ID); err != nil {
			return err
		}
	}

	for _, u := range f.pick(users, f.faker.Number(0, len(users))) {
		if err := f.store.LikeProject(ctx, u.ID, p.ID); err != nil {
			return err
		}
		sum.Likes++
	}

	for _, u := range f.pick(users, f.faker.Number(1, 4)) {
		if _, err := f.store.AddChat(ctx, p.ID, u.ID, f.faker.Sentence(8)); err != nil {
			return err
		}
		sum.Chats++
	}

	opener := users[f.faker.Number(0, len(users)-1)]
	thread, err := f.store.AddForumPost(ctx, p.ID, f.faker.RandomString(forumTitles), f.faker.Paragraph(1, 3, 10, " "), opener.ID, opener.Username)
	if err != nil {
		return err
	}
	sum.ForumPosts++

	var parent *string
	for _, u := range f.pick(users, f.faker.Number(1, 4)) {
		c, err := f.store.AddForumComment(ctx, p.ID, thread.ID, f.faker.Sentence(12), u.ID, u.Username, parent)
		if err != nil {
			return err
		}
		sum.ForumComments++
		if parent == nil && f.faker.Bool() {
			parent = &c.ID
		}
	}

	if p.FundraisingGoal == nil {
		return nil
	}
	for _, u := range f.pick(users, f.faker.Number(1, 4)) {
		amount := float64(f.faker.Number(1, 20) * 5)
		if _, err := f.store.AddUserContribution(ctx, p.ID, u.ID, amount); err != nil {
			return err
		}
		sum.Contributions++
	}
	return nil
}

// CreatePost adds a post by author, optionally attached to projectID.
func (f *Factory) CreatePost(ctx context.Context, author models.User, projectID string) (*models.Post, error) {
	return f.store.AddPost(ctx, author.ID, f.faker.Paragraph(1, 3, 12, " "), strings.TrimSuffix(f.faker.Sentence(4), "."), projectID)
}

// Discuss adds likes and comments from random users to post and returns the
// number of comments written.
func (f *Factory) Discuss(ctx context.Context, post models.Post, users []models.User) (int, error) {
	for _, u := range f.pick(users, f.faker.Number(0, 3)) {
		if err := f.store.LikePost(ctx, post.ID, u.ID); err != nil {
			return 0, err
		}
	}
	comments := 0
	for _, u := range f.pick(users, f.faker.Number(0, 3)) {
		if _, err := f.store.AddUserPostComment(ctx, post.ID, f.faker.Sentence(9), u.ID, u.Username); err != nil {
			return comments, err
		}
		comments++
	}
	return comments, nil
}

// pick returns up to n distinct users in random order.
func (f *Factory) pick(users []models.User, n int) []models.User {
	if n > len(users) {
		n = len(users)
	}
	if n <= 0 {
		return nil
	}
	out := append([]models.User(nil), users...)
	f.faker.ShuffleAnySlice(out)
	return out[:n]
}
