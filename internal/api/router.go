package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"assetdesk.com/internal/api/middleware"
	"assetdesk.com/internal/auth"
	"assetdesk.com/internal/config"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

// Router wires handlers and guard middleware onto the app. Dependencies are
// passed in explicitly so tests can run against an in-memory database.
type Router struct {
	app *fiber.App
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client
}

func NewRouter(app *fiber.App, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Router {
	return &Router{
		app: app,
		cfg: cfg,
		db:  db,
		rdb: rdb,
	}
}

// RegisterRoutes builds the auth stack and registers all routes.
func (r *Router) RegisterRoutes() {
	users := store.NewUserStore(r.db)
	tokens := auth.NewTokenService(r.cfg.Auth.JWTSecret, r.cfg.Auth.TokenTTL)
	lockout := auth.NewLockoutTracker(users, r.cfg.Auth.LockoutThreshold, r.cfg.Auth.LockoutDuration)
	authn := auth.NewAuthenticator(users, lockout, tokens)
	revoked := auth.NewRevocationList(r.rdb)

	guard := middleware.NewGuard(tokens, users, revoked)
	authHandler := NewAuthHandler(authn, users, revoked)
	userHandler := NewUserHandler(users)

	// Public routes
	r.app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})
	r.app.Post("/auth/register", authHandler.Register)
	r.app.Post("/auth/login", authHandler.Login)
	authHandler.EnsureAdminUser()

	// Protected routes
	api := r.app.Group("/api", guard.RequireAuth())
	api.Get("/auth/me", authHandler.GetMe)
	api.Post("/auth/logout", authHandler.Logout)

	admin := api.Group("/users", guard.RequirePermission(model.PermManageUsers))
	admin.Get("/", userHandler.ListUsers)
	admin.Get("/:id", userHandler.GetUser)
	admin.Put("/:id/role", userHandler.UpdateRole)
	admin.Put("/:id/permissions", userHandler.UpdatePermissions)
	admin.Post("/:id/deactivate", userHandler.DeactivateUser)
	admin.Post("/:id/activate", userHandler.ActivateUser)
	admin.Post("/:id/unlock", userHandler.UnlockUser)
}
