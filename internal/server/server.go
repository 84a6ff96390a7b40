// Package server exposes the data store over a JSON HTTP API.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"rtrove/internal/config"
	"rtrove/internal/featureflags"
	"rtrove/internal/models"
	"rtrove/internal/observability"
	"rtrove/internal/store"
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide prometheus middleware. Its collectors live
// on the default registry, which only accepts them once.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New("rtrove")
	})
	return promMiddleware
}

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	store  *store.Store
	flags  *featureflags.Manager
	app    *fiber.App
}

// NewServer creates a server over an already loaded store.
func NewServer(cfg *config.Config, st *store.Store, flags *featureflags.Manager) *Server {
	s := &Server{config: cfg, store: st, flags: flags}
	s.app = fiber.New(fiber.Config{
		AppName: "rtrove",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		},
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(TracingMiddleware())
	app.Use(metrics().Middleware)
	app.Use(StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	metrics().RegisterAt(app, "/metrics")

	api := app.Group("/api")
	api.Get("/flags", s.GetFeatureFlags)

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.Me)

	users := api.Group("/users")
	users.Get("/", s.GetAllUsers)
	users.Get("/created", s.GetCreatedUsers)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Delete("/me", s.AuthRequired(), s.DeleteMyProfile)
	users.Post("/:id/follow", s.AuthRequired(), s.FollowUser)
	users.Delete("/:id/follow", s.AuthRequired(), s.UnfollowUser)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/projects", s.GetUserProjects)
	users.Get("/:id/joined", s.GetJoinedProjects)
	users.Get("/:id/liked", s.GetLikedProjects)
	users.Get("/:id/saved", s.GetSavedProjects)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUser)

	projects := api.Group("/projects")
	projects.Get("/", s.ListProjects)
	projects.Post("/", s.AuthRequired(), s.CreateProject)
	projects.Get("/:id/likes", s.GetProjectLikes)
	projects.Post("/:id/like", s.AuthRequired(), s.LikeProject)
	projects.Delete("/:id/like", s.AuthRequired(), s.UnlikeProject)
	projects.Post("/:id/participation", s.AuthRequired(), s.ToggleParticipation)
	projects.Post("/:id/save", s.AuthRequired(), s.SaveProject)
	projects.Delete("/:id/save", s.AuthRequired(), s.UnsaveProject)
	projects.Get("/:id/goal", s.GetFundraisingGoal)
	projects.Put("/:id/goal", s.AuthRequired(), s.SetFundraisingGoal)
	projects.Get("/:id/commitments", s.GetCommitments)
	projects.Post("/:id/commitments", s.AuthRequired(), s.AddCommitment)
	projects.Get("/:id/commitments/summary", s.GetCommitmentSummary)
	projects.Get("/:id/chats", s.GetProjectChats)
	projects.Post("/:id/chats", s.AuthRequired(), s.AddChat)
	projects.Delete("/:id/chats/:chatId", s.AuthRequired(), s.DeleteChat)
	projects.Get("/:id/forum", s.GetForumPosts)
	projects.Post("/:id/forum", s.AuthRequired(), s.CreateForumPost)
	projects.Get("/:id/posts", s.GetProjectPosts)
	projects.Get("/:id", s.GetProject)
	projects.Patch("/:id", s.AuthRequired(), s.EditProject)
	projects.Put("/:id", s.AuthRequired(), s.ReplaceProject)
	projects.Delete("/:id", s.AuthRequired(), s.DeleteProject)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.AuthRequired(), s.CreatePost)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Delete("/:id/like", s.AuthRequired(), s.UnlikePost)
	posts.Post("/:id/comments", s.AuthRequired(), s.CreatePostComment)
	posts.Delete("/:id/comments/:commentId", s.AuthRequired(), s.DeletePostComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	forum := api.Group("/forum")
	forum.Patch("/comments/:commentId", s.AuthRequired(), s.UpdateForumComment)
	forum.Delete("/comments/:commentId", s.AuthRequired(), s.DeleteForumComment)
	forum.Get("/:id/comments", s.GetForumThread)
	forum.Post("/:id/comments", s.AuthRequired(), s.CreateForumComment)
	forum.Get("/:id", s.GetForumPost)
	forum.Patch("/:id", s.AuthRequired(), s.UpdateForumPost)
	forum.Delete("/:id", s.AuthRequired(), s.DeleteForumPost)

	folders := api.Group("/folders")
	folders.Get("/", s.GetFolderViews)
	folders.Post("/", s.AuthRequired(), s.CreateFolderView)
	folders.Post("/feed", s.FilterFeed)
	folders.Get("/:id/feed", s.GetFolderFeed)
	folders.Put("/:id", s.AuthRequired(), s.UpdateFolderView)
	folders.Delete("/:id", s.AuthRequired(), s.DeleteFolderView)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports ready once the store has loaded.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	status := fiber.StatusOK
	storeStatus := "loaded"
	if !s.store.IsLoaded() {
		status = fiber.StatusServiceUnavailable
		storeStatus = "loading"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": storeStatus,
		"checks": fiber.Map{
			"store": storeStatus,
		},
		"time": time.Now(),
	})
}

// GetFeatureFlags reports flag states for the signed-in user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := ""
	if u := s.store.CurrentUser(); u != nil {
		userID = u.ID
	}
	return c.JSON(s.flags.Snapshot(userID))
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	observability.GlobalLogger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.GlobalLogger.Error("error shutting down HTTP server", "error", err)
		return err
	}
	observability.GlobalLogger.Info("server shutdown complete")
	return nil
}
