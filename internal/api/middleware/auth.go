package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"assetdesk.com/internal/auth"
	"assetdesk.com/internal/domain"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

// Locals keys set by RequireAuth for downstream handlers.
const (
	LocalClaims = "claims"
	LocalUser   = "user"
)

// Guard validates session tokens and enforces role/permission checks before
// handler execution. Permission and role checks read the freshly loaded user
// record, not the token, so administrative edits take effect immediately even
// on tokens issued before the change.
type Guard struct {
	tokens  *auth.TokenService
	store   *store.UserStore
	revoked *auth.RevocationList
}

func NewGuard(tokens *auth.TokenService, s *store.UserStore, revoked *auth.RevocationList) *Guard {
	return &Guard{
		tokens:  tokens,
		store:   s,
		revoked: revoked,
	}
}

// RequireAuth validates the Bearer token and attaches the authenticated
// identity to the request context. Missing, malformed, expired, revoked and
// badly signed tokens are all rejected the same way.
func (g *Guard) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return sendGuardError(c, domain.NewUnauthenticatedError("Missing Authorization header"))
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := g.tokens.Verify(tokenString)
		if err != nil {
			return sendGuardError(c, err)
		}

		if g.revoked.IsRevoked(c.UserContext(), claims.ID) {
			return sendGuardError(c, domain.NewUnauthenticatedError("Token has been revoked"))
		}

		user, err := g.store.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return sendGuardError(c, err)
		}
		if user == nil {
			return sendGuardError(c, domain.NewUnauthenticatedError("Unknown user"))
		}
		if !user.IsActive {
			return sendGuardError(c, domain.NewAccountDeactivatedError())
		}

		c.Locals(LocalClaims, claims)
		c.Locals(LocalUser, user)
		c.Locals("id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("email", user.Email)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RequirePermission allows the request through if the authenticated user is an
// admin or holds the permission in their stored set. Must run after RequireAuth.
func (g *Guard) RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil {
			return sendGuardError(c, domain.NewUnauthenticatedError("Not authenticated"))
		}
		if !user.HasPermission(perm) {
			return sendGuardError(c, domain.NewForbiddenError("Missing permission: "+perm))
		}
		return c.Next()
	}
}

// RequireRole allows the request through only if the authenticated user's role
// is among the acceptable ones. Must run after RequireAuth.
func (g *Guard) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil {
			return sendGuardError(c, domain.NewUnauthenticatedError("Not authenticated"))
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return sendGuardError(c, domain.NewForbiddenError("Insufficient role"))
	}
}

// UserFromContext returns the user attached by RequireAuth, or nil.
func UserFromContext(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(LocalUser).(*model.User)
	return user
}

// ClaimsFromContext returns the token claims attached by RequireAuth, or nil.
func ClaimsFromContext(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}

func sendGuardError(c *fiber.Ctx, err error) error {
	var appErr *domain.AppError
	if e, ok := err.(*domain.AppError); ok {
		appErr = e
	} else {
		appErr = domain.NewInternalError("guard failure", err)
	}
	return c.Status(appErr.Code).JSON(fiber.Map{
		"status":  "error",
		"message": appErr.Message,
	})
}
