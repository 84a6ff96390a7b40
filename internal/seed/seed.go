// Package seed fills a store with demo data. Everything goes through the
// regular store operations so the generated data obeys the same rules as
// user-entered data. Intended for development and testing only.
package seed

import (
	"context"
	"fmt"

	"rtrove/internal/models"
	"rtrove/internal/observability"
	"rtrove/internal/store"
)

// DefaultPassword is the password every seeded user registers with.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumProjects int
	NumPosts    int
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed int64
}

// Summary counts what a run created.
type Summary struct {
	Users         int `json:"users"`
	Follows       int `json:"follows"`
	Projects      int `json:"projects"`
	Posts         int `json:"posts"`
	Comments      int `json:"comments"`
	Chats         int `json:"chats"`
	ForumPosts    int `json:"forumPosts"`
	ForumComments int `json:"forumComments"`
	Contributions int `json:"contributions"`
	Likes         int `json:"likes"`
}

var (
	projectTypes = []string{"Live", "Community", "Songs", "Album", "Production", "Distribution", "Merch", "Collab"}

	artTypes = []string{"Musician", "Producer", "Visual Artist", "Writer", "Filmmaker", "Designer", "Photographer", "DJ"}

	tagPool = []string{
		"indie", "hiphop", "jazz", "lofi", "electronic", "folk", "punk", "ambient",
		"vinyl", "tour", "remix", "acoustic", "synth", "zine", "mural", "diy",
	}

	forumTitles = []string{
		"Release timeline", "Looking for a mixing engineer", "Merch ideas",
		"Venue suggestions", "Feedback on the demo", "Budget breakdown",
	}
)

// Run seeds st according to opts and leaves it logged out.
func Run(ctx context.Context, st *store.Store, opts Options) (*Summary, error) {
	f := NewFactory(st, opts)
	sum := &Summary{}

	users, err := f.CreateUsers(ctx, opts.NumUsers)
	if err != nil {
		return sum, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	if sum.Follows, err = f.Follow(ctx, users); err != nil {
		return sum, fmt.Errorf("seed follows: %w", err)
	}

	projects := make([]models.Project, 0, opts.NumProjects)
	for i := 0; i < opts.NumProjects; i++ {
		p, err := f.CreateProject(ctx, users[i%len(users)])
		if err != nil {
			return sum, fmt.Errorf("seed projects: %w", err)
		}
		projects = append(projects, *p)
	}
	sum.Projects = len(projects)

	for _, p := range projects {
		if err := f.PopulateProject(ctx, p, users, sum); err != nil {
			return sum, fmt.Errorf("seed project %s: %w", p.ID, err)
		}
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		projectID := ""
		if len(projects) > 0 && f.faker.Bool() {
			projectID = projects[f.faker.Number(0, len(projects)-1)].ID
		}
		post, err := f.CreatePost(ctx, author, projectID)
		if err != nil {
			return sum, fmt.Errorf("seed posts: %w", err)
		}
		sum.Posts++
		n, err := f.Discuss(ctx, *post, users)
		if err != nil {
			return sum, fmt.Errorf("seed comments: %w", err)
		}
		sum.Comments += n
	}

	if err := st.Logout(ctx); err != nil {
		return sum, err
	}

	observability.GlobalLogger.Info("seed complete",
		"users", sum.Users,
		"projects", sum.Projects,
		"posts", sum.Posts,
		"chats", sum.Chats,
		"contributions", sum.Contributions,
	)
	return sum, nil
}
