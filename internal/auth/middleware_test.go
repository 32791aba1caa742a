package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/coop-scheduler/internal/domain"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

func newGatedApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code, "message": de.Message}})
		},
	})
	mw := NewAuthMiddleware(tm, nil)

	app.Get("/whoami", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"sub": p.UserID, "role": p.Role, "storeId": p.StoreID, "qualifications": p.Qualifications})
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/ungated", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authz string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	tm, _ := newTestManager(t)
	tok, err := tm.IssueAccessToken(testIdentity())
	require.NoError(t, err)

	resp, body := doGet(t, newGatedApp(tm), "/whoami", "Bearer "+tok.Value)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-1", body["sub"])
	assert.Equal(t, "store_manager", body["role"])
	assert.Equal(t, "store-7", body["storeId"])
	assert.Equal(t, []any{"forklift", "cashier"}, body["qualifications"])
}

func TestMiddlewareRejectsUniformly(t *testing.T) {
	tm, clock := newTestManager(t)
	app := newGatedApp(tm)

	tok, err := tm.IssueAccessToken(testIdentity())
	require.NoError(t, err)
	refresh, err := tm.IssueRefreshToken(testIdentity())
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + tok.Value,
		"empty bearer":   "Bearer ",
		"garbage":        "Bearer abc.def.ghi",
		"refresh token":  "Bearer " + refresh.Value,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := doGet(t, app, "/whoami", header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, map[string]any{"code": "UNAUTHORIZED", "message": "Unauthorized"}, body["error"])
		})
	}

	clock.Advance(16 * time.Minute)
	resp, body := doGet(t, app, "/whoami", "Bearer "+tok.Value)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, map[string]any{"code": "UNAUTHORIZED", "message": "Unauthorized"}, body["error"])
}

func TestRoleGate(t *testing.T) {
	tm, _ := newTestManager(t)
	app := newGatedApp(tm)

	manager, err := tm.IssueAccessToken(testIdentity())
	require.NoError(t, err)
	admin, err := tm.IssueAccessToken(domain.Identity{UserID: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)

	resp, _ := doGet(t, app, "/admin", "Bearer "+admin.Value)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doGet(t, app, "/admin", "Bearer "+manager.Value)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])

	resp, _ = doGet(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGateNeverTrustsUnverifiedCallers(t *testing.T) {
	tm, _ := newTestManager(t)
	admin, err := tm.IssueAccessToken(domain.Identity{UserID: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)

	resp, _ := doGet(t, newGatedApp(tm), "/ungated", "Bearer "+admin.Value)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("abc")
	assert.False(t, ok)
}
