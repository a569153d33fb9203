package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"venue-backend/internal/auth"
	"venue-backend/internal/config"
	"venue-backend/internal/database/dbtest"
	"venue-backend/internal/deduction"
	"venue-backend/internal/lock"
	"venue-backend/internal/metrics"
	"venue-backend/internal/models"
	"venue-backend/internal/order"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	dbtest.Use(t, db)

	reg := prometheus.NewRegistry()
	engine := deduction.NewEngine(db, deduction.WithMetrics(metrics.NewDeduction(reg)))
	cfg := &config.Config{JWTSecret: secret, CORSOrigins: "*", DeductionMode: config.DeductionModeBestEffort}

	app := NewApp(Deps{
		Config:   cfg,
		Engine:   engine,
		Orders:   order.NewService(db, engine, lock.NewMemory(), time.Minute, nil),
		Gatherer: reg,
	})
	return app, db
}

func tokenFor(t *testing.T, id uint, role models.UserRole) string {
	t.Helper()
	tok, err := auth.GenerateToken(secret, &models.User{ID: id, Role: role})
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, app *fiber.App, method, path, body, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestHealthz(t *testing.T) {
	app, _ := newTestServer(t)
	code, body := call(t, app, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, "best_effort")
}

func TestErrorHandlerReturnsJSON(t *testing.T) {
	app, _ := newTestServer(t)
	code, body := call(t, app, http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.JSONEq(t, `{"error":"Authorization header eksik"}`, body)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	app, _ := newTestServer(t)

	staff := tokenFor(t, 2, models.RoleStaff)
	code, _ := call(t, app, http.MethodPost, "/api/admin/products", `{"name":"Kola"}`, staff)
	assert.Equal(t, fiber.StatusForbidden, code)

	manager := tokenFor(t, 3, models.RoleManager)
	code, _ = call(t, app, http.MethodPost, "/api/admin/products", `{"name":"Kola","stock":5}`, manager)
	assert.Equal(t, fiber.StatusCreated, code)

	code, _ = call(t, app, http.MethodGet, "/api/users", "", manager)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, app, http.MethodGet, "/api/products", "", staff)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestOrderDeliveryEndToEnd(t *testing.T) {
	app, db := newTestServer(t)

	vodka := models.Ingredient{Name: "Vodka", Unit: "ml", Stock: 5, Quantity: 20, OriginalQuantity: 100}
	require.NoError(t, db.Create(&vodka).Error)
	recipe := models.Recipe{Name: "Vodka Tonik"}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.RecipeIngredient{RecipeID: &recipe.ID, IngredientID: &vodka.ID, DeductQuantity: 50}).Error)
	drink := models.Product{Name: "Vodka Tonik", Type: models.ProductTypePlain, RecipeID: &recipe.ID}
	require.NoError(t, db.Create(&drink).Error)

	staff := tokenFor(t, 2, models.RoleStaff)
	code, body := call(t, app, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"items":[{"product_id":%d,"quantity":3}]}`, drink.ID), staff)
	require.Equal(t, fiber.StatusCreated, code, body)

	var o models.Order
	require.NoError(t, db.Last(&o).Error)

	code, body = call(t, app, http.MethodPut, "/api/orders", fmt.Sprintf(`{"id":%d,"status":"delivered"}`, o.ID), staff)
	require.Equal(t, fiber.StatusOK, code, body)

	// 150 ml: açık 20 ml + iki yeni şişe (200) -> 3 kapalı şişe, 70 ml açık
	var after models.Ingredient
	require.NoError(t, db.First(&after, vodka.ID).Error)
	assert.Equal(t, 3, after.Stock)
	assert.InDelta(t, 70, after.Quantity, 1e-9)

	code, body = call(t, app, http.MethodGet, "/metrics", "", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `venue_deduction_items_total{result="success",strategy="direct_recipe"} 1`)
}
