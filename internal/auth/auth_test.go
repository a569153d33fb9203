package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"venue-backend/internal/config"
	"venue-backend/internal/database/dbtest"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	dbtest.Use(t, dbtest.New(t))

	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Post("/register", RegisterSuperAdminHandler())
	app.Post("/login", LoginHandler(cfg))

	protected := app.Group("/", JWTMiddleware(cfg))
	protected.Get("/me", MeHandler())
	protected.Post("/users", RequireRole(models.RoleSuperAdmin), CreateUserHandler())
	return app, cfg
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRegisterLoginAndMe(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/register",
		`{"name":"Admin","email":"Admin@Venue.io","password":"supersecret"}`, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/register",
		`{"name":"Other","email":"other@venue.io","password":"supersecret"}`, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/login",
		`{"email":"admin@venue.io","password":"supersecret"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, body = doJSON(t, app, http.MethodGet, "/me", "", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin@venue.io", body["email"])
	assert.Equal(t, string(models.RoleSuperAdmin), body["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/register",
		`{"name":"Admin","email":"admin@venue.io","password":"supersecret"}`, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/login",
		`{"email":"admin@venue.io","password":"wrong-password"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/me", "", "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	other, err := GenerateToken("another-secret-another-secret-xx", &models.User{ID: 1, Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/me", "", other)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, _ := newTestApp(t)

	staffToken, err := GenerateToken(testSecret, &models.User{ID: 5, Role: models.RoleStaff})
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodPost, "/users",
		`{"name":"Barmen","email":"bar@venue.io","password":"password1","role":"staff"}`, staffToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken, err := GenerateToken(testSecret, &models.User{ID: 1, Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/users",
		`{"name":"Barmen","email":"bar@venue.io","password":"password1","role":"staff"}`, adminToken)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "staff", body["role"])

	resp, _ = doJSON(t, app, http.MethodPost, "/users",
		`{"name":"Barmen","email":"bar@venue.io","password":"password1","role":"staff"}`, adminToken)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/users",
		`{"name":"X","email":"x@venue.io","password":"password1","role":"owner"}`, adminToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParseTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, &models.User{ID: 9, Email: "a@b.c", Role: models.RoleManager})
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)

	_, err = GenerateToken("", &models.User{ID: 9})
	assert.Error(t, err)
}
