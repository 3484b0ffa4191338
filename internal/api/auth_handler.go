package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"assetdesk.com/internal/api/middleware"
	"assetdesk.com/internal/auth"
	"assetdesk.com/internal/domain"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

type AuthHandler struct {
	authn   *auth.Authenticator
	store   *store.UserStore
	revoked *auth.RevocationList
}

func NewAuthHandler(authn *auth.Authenticator, s *store.UserStore, revoked *auth.RevocationList) *AuthHandler {
	return &AuthHandler{
		authn:   authn,
		store:   s,
		revoked: revoked,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user (default role: employee) and logs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid request body"}))
	}

	token, profile, err := h.authn.Register(c.UserContext(), auth.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return SendError(c, err)
	}

	return SendSuccess(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// Login authenticates the user and returns a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid request body"}))
	}
	if req.Email == "" || req.Password == "" {
		return SendError(c, domain.NewValidationError(
			domain.FieldError{Field: "email", Message: "email and password are required"},
		))
	}

	token, profile, err := h.authn.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return SendError(c, err)
	}

	return SendSuccess(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// GetMe returns the current user's sanitized projection.
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return SendError(c, domain.NewUnauthenticatedError("Not authenticated"))
	}
	return SendSuccess(c, fiber.StatusOK, "", user.ToProfile())
}

// Logout revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return SendError(c, domain.NewUnauthenticatedError("Not authenticated"))
	}
	if err := h.revoked.Revoke(c.UserContext(), claims); err != nil {
		log.Printf("Warning: failed to revoke token %s: %v", claims.ID, err)
	}
	return SendSuccess(c, fiber.StatusOK, "Logged out successfully", nil)
}

// EnsureAdminUser creates a default admin account when the user table is
// empty, so a fresh deployment is reachable.
func (h *AuthHandler) EnsureAdminUser() {
	ctx := context.Background()

	count, err := h.store.Count(ctx)
	if err != nil {
		log.Printf("Auth: failed to count users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	log.Println("Auth: No users found. Creating default 'admin' user...")
	admin := &model.User{
		Username: "admin",
		Email:    "admin@admin.com",
		Password: "admin123",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := h.store.Create(ctx, admin); err != nil {
		log.Printf("Failed to create admin user: %v", err)
		return
	}
	log.Println("Auth: Created default user: admin / admin123")
}
