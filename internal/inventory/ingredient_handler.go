package inventory

import (
	"context"
	"fmt"
	"strings"

	"venue-backend/internal/database"
	"venue-backend/internal/deduction"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type IngredientRequest struct {
	Name             *string  `json:"name"`
	Unit             *string  `json:"unit"`
	Stock            *int     `json:"stock"`
	Quantity         *float64 `json:"quantity"`
	OriginalQuantity *float64 `json:"original_quantity"`
	ProductID        *uint    `json:"product_id"`
}

type RestockRequest struct {
	Units int `json:"units"` // eklenecek kapalı birim sayısı
}

type AdjustStockRequest struct {
	Stock    int     `json:"stock"`
	Quantity float64 `json:"quantity"`
}

// applyMeta stok dışındaki alanları yazar; stok alanları oluşturma sırasında ayrıca ele alınır.
func (r IngredientRequest) applyMeta(ing *models.Ingredient) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme adı boş olamaz")
		}
		ing.Name = name
	}
	if r.Unit != nil {
		unit := strings.TrimSpace(*r.Unit)
		if unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Birim boş olamaz")
		}
		ing.Unit = unit
	}
	if r.OriginalQuantity != nil {
		if *r.OriginalQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Birim kapasitesi negatif olamaz")
		}
		ing.OriginalQuantity = *r.OriginalQuantity
	}
	if r.ProductID != nil {
		if *r.ProductID == 0 {
			ing.ProductID = nil
		} else {
			if !exists(database.DB, &models.Product{}, *r.ProductID) {
				return fiber.NewError(fiber.StatusBadRequest, "Aynalanacak ürün bulunamadı")
			}
			id := *r.ProductID
			ing.ProductID = &id
		}
	}
	return nil
}

func validateIngredientStock(stock int, quantity, original float64) error {
	if stock < 0 || quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Stok ve miktar negatif olamaz")
	}
	if original > 0 && quantity > original {
		return fiber.NewError(fiber.StatusBadRequest, "Açık birim miktarı birim kapasitesini aşamaz")
	}
	return nil
}

// GET /api/ingredients
func ListIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ingredients []models.Ingredient
		if err := database.DB.Order("name asc").Find(&ingredients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}
		return c.JSON(ingredients)
	}
}

// GET /api/ingredients/:id
func GetIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz malzeme ID")
		if err != nil {
			return err
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, id).Error; err != nil {
			return notFoundOr(err, "Malzeme bulunamadı", "Malzeme okunamadı")
		}
		return c.JSON(ing)
	}
}

// POST /api/admin/ingredients
func CreateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body IngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.Name == nil || body.Unit == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ad ve birim zorunlu")
		}

		var ing models.Ingredient
		if err := body.applyMeta(&ing); err != nil {
			return err
		}
		if body.Stock != nil {
			ing.Stock = *body.Stock
		}
		if body.Quantity != nil {
			ing.Quantity = *body.Quantity
		}
		if err := validateIngredientStock(ing.Stock, ing.Quantity, ing.OriginalQuantity); err != nil {
			return err
		}

		if err := database.DB.Create(&ing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme oluşturulamadı")
		}

		writeAudit(c, "ingredient", ing.ID, models.AuditActionCreate, fmt.Sprintf("Malzeme oluşturuldu: %s", ing.Name), nil, ing)
		return c.Status(fiber.StatusCreated).JSON(ing)
	}
}

// PUT /api/admin/ingredients/:id
// Stok alanları burada değişmez; stok için /stock ve /restock kullanılır.
func UpdateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz malzeme ID")
		if err != nil {
			return err
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, id).Error; err != nil {
			return notFoundOr(err, "Malzeme bulunamadı", "Malzeme okunamadı")
		}
		before := ing

		var body IngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.Stock != nil || body.Quantity != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Stok değişikliği için stok düzeltme uç noktasını kullanın")
		}
		if err := body.applyMeta(&ing); err != nil {
			return err
		}
		if err := validateIngredientStock(ing.Stock, ing.Quantity, ing.OriginalQuantity); err != nil {
			return err
		}

		if err := database.DB.Save(&ing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme güncellenemedi")
		}

		writeAudit(c, "ingredient", ing.ID, models.AuditActionUpdate, fmt.Sprintf("Malzeme güncellendi: %s", ing.Name), before, ing)
		return c.JSON(ing)
	}
}

// PUT /api/admin/ingredients/:id/stock
// Sayım sonrası düzeltme. Bağlı ürün de aynı değerlere çekilir.
func AdjustIngredientStockHandler(adjuster StockAdjuster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz malzeme ID")
		if err != nil {
			return err
		}

		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		return adjustStock(c, id, func(ctx context.Context) error {
			return adjuster.ApplyDeduction(ctx, id, body.Stock, body.Quantity)
		})
	}
}

// POST /api/admin/ingredients/:id/restock
func RestockIngredientHandler(adjuster StockAdjuster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz malzeme ID")
		if err != nil {
			return err
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.Units <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Eklenecek birim sayısı pozitif olmalı")
		}

		return adjustStock(c, id, func(ctx context.Context) error {
			return adjuster.Restock(ctx, id, body.Units)
		})
	}
}

// adjustStock değişikliği motor üzerinden uygular; before yalnızca audit kaydı için okunur.
func adjustStock(c *fiber.Ctx, id uint, mutate func(ctx context.Context) error) error {
	var before models.Ingredient
	if err := database.DB.First(&before, id).Error; err != nil {
		return notFoundOr(err, "Malzeme bulunamadı", "Malzeme okunamadı")
	}

	if err := mutate(c.UserContext()); err != nil {
		return stockError(err)
	}

	var after models.Ingredient
	if err := database.DB.First(&after, id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Malzeme okunamadı")
	}

	writeAudit(c, "ingredient", id, models.AuditActionUpdate,
		fmt.Sprintf("Malzeme stoğu: %d+%.2f -> %d+%.2f %s", before.Stock, before.Quantity, after.Stock, after.Quantity, after.Unit),
		before, after)
	return c.JSON(after)
}

// DELETE /api/admin/ingredients/:id
func DeleteIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz malzeme ID")
		if err != nil {
			return err
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, id).Error; err != nil {
			return notFoundOr(err, "Malzeme bulunamadı", "Malzeme okunamadı")
		}

		var used int64
		database.DB.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&used)
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Reçetelerde kullanılan malzeme silinemez")
		}

		if err := database.DB.Model(&models.Product{}).Where("ingredient_id = ?", id).Update("ingredient_id", nil).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün bağlantısı kaldırılamadı")
		}
		if err := database.DB.Delete(&models.Ingredient{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		writeAudit(c, "ingredient", ing.ID, models.AuditActionDelete, fmt.Sprintf("Malzeme silindi: %s", ing.Name), ing, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

var _ StockAdjuster = (*deduction.Engine)(nil)
