// Package server fiber uygulamasını ve rotalarını kurar.
package server

import (
	"errors"
	"strings"

	"venue-backend/internal/audit"
	"venue-backend/internal/auth"
	"venue-backend/internal/config"
	"venue-backend/internal/deduction"
	"venue-backend/internal/inventory"
	"venue-backend/internal/models"
	"venue-backend/internal/order"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Config   *config.Config
	Engine   *deduction.Engine
	Orders   *order.Service
	Log      *zap.Logger
	Gatherer prometheus.Gatherer
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}
		log.Error("beklenmeyen hata", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Beklenmeyen sunucu hatası",
		})
	}
}

func NewApp(d Deps) *fiber.App {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	corsOrigins := strings.Split(d.Config.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "deduction_mode": d.Engine.Mode()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(d.Config))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.Config))

	protected.Get("/auth/me", auth.MeHandler())

	// Siparişler (tüm personel)
	protected.Post("/orders", order.CreateOrderHandler())
	protected.Get("/orders", order.ListOrdersHandler())
	protected.Get("/orders/:id", order.GetOrderHandler())
	protected.Put("/orders", order.UpdateOrderHandler(d.Orders))

	// Envanter okuma
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/products/:id", inventory.GetProductHandler())
	protected.Get("/products/:id/ingredients", inventory.ListProductRowsHandler())
	protected.Get("/ingredients", inventory.ListIngredientsHandler())
	protected.Get("/ingredients/:id", inventory.GetIngredientHandler())
	protected.Get("/recipes", inventory.ListRecipesHandler())
	protected.Get("/recipes/:id", inventory.GetRecipeHandler())
	protected.Get("/product-categories", inventory.ListProductCategoriesHandler())

	// Zayiat
	protected.Post("/waste-entries", inventory.CreateWasteEntryHandler(d.Engine))
	protected.Get("/waste-entries", inventory.ListWasteEntriesHandler())
	protected.Get("/waste-entries/:id", inventory.GetWasteEntryHandler())

	// Yönetim (super_admin, manager)
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleManager))

	adminRoutes.Post("/product-categories", inventory.CreateProductCategoryHandler())
	adminRoutes.Put("/product-categories/:id", inventory.UpdateProductCategoryHandler())
	adminRoutes.Delete("/product-categories/:id", inventory.DeleteProductCategoryHandler())

	adminRoutes.Post("/products", inventory.CreateProductHandler())
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", inventory.DeleteProductHandler())
	adminRoutes.Post("/products/:id/ingredients", inventory.AddProductRowHandler())

	adminRoutes.Post("/ingredients", inventory.CreateIngredientHandler())
	adminRoutes.Put("/ingredients/:id", inventory.UpdateIngredientHandler())
	adminRoutes.Put("/ingredients/:id/stock", inventory.AdjustIngredientStockHandler(d.Engine))
	adminRoutes.Post("/ingredients/:id/restock", inventory.RestockIngredientHandler(d.Engine))
	adminRoutes.Delete("/ingredients/:id", inventory.DeleteIngredientHandler())
	adminRoutes.Post("/ingredients/restock-import", inventory.ImportRestockHandler(d.Engine))
	adminRoutes.Get("/stock-movements/export", inventory.ExportStockMovementsHandler())

	adminRoutes.Post("/recipes", inventory.CreateRecipeHandler())
	adminRoutes.Delete("/recipes/:id", inventory.DeleteRecipeHandler())
	adminRoutes.Post("/recipes/:id/ingredients", inventory.AddRecipeRowHandler())
	adminRoutes.Delete("/recipe-ingredients/:id", inventory.DeleteRecipeRowHandler())

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Kullanıcı yönetimi (sadece super_admin)
	users := protected.Group("/users", auth.RequireRole(models.RoleSuperAdmin))
	users.Get("", auth.ListUsersHandler())
	users.Post("", auth.CreateUserHandler())

	return app
}
