package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assetdesk.com/internal/auth"
	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

func newTestGuard(t *testing.T) (*Guard, *store.UserStore, *auth.TokenService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	users := store.NewUserStore(db)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewGuard(tokens, users, nil), users, tokens
}

func createUserWithToken(t *testing.T, users *store.UserStore, tokens *auth.TokenService, role string) string {
	t.Helper()
	user := &model.User{
		Username: role + "-user",
		Email:    role + "@example.com",
		Password: "secret1",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireRole(t *testing.T) {
	guard, users, tokens := newTestGuard(t)

	app := fiber.New()
	app.Get("/managers-only", guard.RequireAuth(), guard.RequireRole(model.RoleAdmin, model.RoleManager),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	managerToken := createUserWithToken(t, users, tokens, model.RoleManager)
	employeeToken := createUserWithToken(t, users, tokens, model.RoleEmployee)

	assert.Equal(t, http.StatusOK, get(t, app, "/managers-only", managerToken))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/managers-only", employeeToken))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/managers-only", ""))
}

func TestRequirePermissionAdminBypass(t *testing.T) {
	guard, users, tokens := newTestGuard(t)

	app := fiber.New()
	app.Get("/settings", guard.RequireAuth(), guard.RequirePermission(model.PermSystemSettings),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	// Admin with a deliberately empty stored set still passes.
	admin := &model.User{
		Username:    "root",
		Email:       "root@example.com",
		Password:    "secret1",
		Role:        model.RoleAdmin,
		Permissions: []string{},
		IsActive:    true,
	}
	require.NoError(t, users.Create(context.Background(), admin))
	adminToken, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	employeeToken := createUserWithToken(t, users, tokens, model.RoleEmployee)

	assert.Equal(t, http.StatusOK, get(t, app, "/settings", adminToken))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/settings", employeeToken))
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	guard, users, tokens := newTestGuard(t)

	app := fiber.New()
	app.Get("/whoami", guard.RequireAuth(), func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		claims := ClaimsFromContext(c)
		require.NotNil(t, user)
		require.NotNil(t, claims)
		return c.JSON(fiber.Map{"username": user.Username, "jti": claims.ID})
	})

	token := createUserWithToken(t, users, tokens, model.RoleEmployee)
	assert.Equal(t, http.StatusOK, get(t, app, "/whoami", token))
}

func TestRequireAuthRejectsDeactivatedUser(t *testing.T) {
	guard, users, tokens := newTestGuard(t)

	app := fiber.New()
	app.Get("/ping", guard.RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	user := &model.User{
		Username: "gone",
		Email:    "gone@example.com",
		Password: "secret1",
		Role:     model.RoleEmployee,
		IsActive: true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, users.Save(context.Background(), user))

	assert.Equal(t, http.StatusForbidden, get(t, app, "/ping", token))
}
