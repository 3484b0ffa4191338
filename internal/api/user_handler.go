package api

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"assetdesk.com/internal/api/middleware"
	"assetdesk.com/internal/domain"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

// UserHandler exposes the admin-facing user management endpoints. All routes
// sit behind the manage_users permission.
type UserHandler struct {
	store *store.UserStore
}

func NewUserHandler(s *store.UserStore) *UserHandler {
	return &UserHandler{store: s}
}

// ListUsers returns a page of sanitized user projections.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := h.store.List(c.UserContext(), page, pageSize)
	if err != nil {
		return SendError(c, err)
	}

	profiles := make([]model.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}
	return SendPaginated(c, profiles, page, pageSize, total)
}

// GetUser returns one user by id.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}
	return SendSuccess(c, fiber.StatusOK, "", user.ToProfile())
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role. The stored permission set is reset to the
// new role's defaults, so capabilities of the old role do not linger.
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil || !model.ValidRole(req.Role) {
		return SendError(c, domain.NewValidationError(domain.FieldError{Field: "role", Message: "unknown role"}))
	}

	user.Role = req.Role
	user.Permissions = model.DefaultPermissions(req.Role)
	if err := h.store.Save(c.UserContext(), user); err != nil {
		return SendError(c, err)
	}

	log.Printf("Users: role of %s changed to %s", user.Username, user.Role)
	return SendSuccess(c, fiber.StatusOK, "Role updated", user.ToProfile())
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// UpdatePermissions grants explicit permissions on top of the role defaults.
// Grants are additive: the stored set is the union of the role defaults and
// the supplied list, so an edit can never strip a default capability.
func (h *UserHandler) UpdatePermissions(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}

	var req updatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, domain.NewValidationError(domain.FieldError{Field: "permissions", Message: "invalid request body"}))
	}
	for _, p := range req.Permissions {
		if !model.ValidPermission(p) {
			return SendError(c, domain.NewValidationError(domain.FieldError{Field: "permissions", Message: "unknown permission: " + p}))
		}
	}

	merged := model.DefaultPermissions(user.Role)
	for _, p := range req.Permissions {
		if !contains(merged, p) {
			merged = append(merged, p)
		}
	}
	user.Permissions = merged

	if err := h.store.Save(c.UserContext(), user); err != nil {
		return SendError(c, err)
	}
	return SendSuccess(c, fiber.StatusOK, "Permissions updated", user.ToProfile())
}

// DeactivateUser soft-disables the account. The record is never hard-deleted
// here; deactivated users fail authentication regardless of credentials.
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}

	if actor := middleware.UserFromContext(c); actor != nil && actor.ID == user.ID {
		return SendError(c, domain.NewForbiddenError("Cannot deactivate your own account"))
	}

	user.IsActive = false
	if err := h.store.Save(c.UserContext(), user); err != nil {
		return SendError(c, err)
	}
	return SendSuccess(c, fiber.StatusOK, "User deactivated", user.ToProfile())
}

// ActivateUser re-enables a deactivated account.
func (h *UserHandler) ActivateUser(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}

	user.IsActive = true
	if err := h.store.Save(c.UserContext(), user); err != nil {
		return SendError(c, err)
	}
	return SendSuccess(c, fiber.StatusOK, "User activated", user.ToProfile())
}

// UnlockUser clears the lockout state without waiting for natural expiry.
func (h *UserHandler) UnlockUser(c *fiber.Ctx) error {
	user, err := h.lookupParamUser(c)
	if err != nil {
		return SendError(c, err)
	}

	user.LoginAttempts = 0
	user.LockUntil = nil
	if err := h.store.SaveLoginState(c.UserContext(), user); err != nil {
		return SendError(c, err)
	}
	return SendSuccess(c, fiber.StatusOK, "User unlocked", user.ToProfile())
}

func (h *UserHandler) lookupParamUser(c *fiber.Ctx) (*model.User, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "id", Message: "invalid user id"})
	}
	user, err := h.store.FindByID(c.UserContext(), uint(id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}
	return user, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
