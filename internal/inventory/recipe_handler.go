package inventory

import (
	"fmt"
	"strings"

	"venue-backend/internal/database"
	"venue-backend/internal/deduction"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecipeRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type RecipeRowRequest struct {
	IngredientID   *uint   `json:"ingredient_id"`
	NestedRecipeID *uint   `json:"nested_recipe_id"`
	DeductQuantity float64 `json:"deduct_quantity"`
	DeductStock    float64 `json:"deduct_stock"`
}

// toRow satırı doğrular. Sahip (reçete ya da ürün) çağıran tarafından atanır.
func (r RecipeRowRequest) toRow() (models.RecipeIngredient, error) {
	row := models.RecipeIngredient{
		IngredientID:   r.IngredientID,
		NestedRecipeID: r.NestedRecipeID,
		DeductQuantity: r.DeductQuantity,
		DeductStock:    r.DeductStock,
	}

	c, err := deduction.ComponentOf(row)
	if err != nil {
		return row, fiber.NewError(fiber.StatusBadRequest, "Satır ya ingredient_id ya da nested_recipe_id içermeli")
	}

	switch ref := c.(type) {
	case deduction.IngredientRef:
		if ref.DeductQuantity <= 0 {
			return row, fiber.NewError(fiber.StatusBadRequest, "deduct_quantity pozitif olmalı")
		}
		if !exists(database.DB, &models.Ingredient{}, ref.IngredientID) {
			return row, fiber.NewError(fiber.StatusBadRequest, "Malzeme bulunamadı")
		}
		row.DeductStock = 0
	case deduction.NestedRecipeRef:
		if ref.DeductStock <= 0 {
			return row, fiber.NewError(fiber.StatusBadRequest, "deduct_stock pozitif olmalı")
		}
		if !exists(database.DB, &models.Recipe{}, ref.RecipeID) {
			return row, fiber.NewError(fiber.StatusBadRequest, "Alt reçete bulunamadı")
		}
		row.DeductQuantity = 0
	}
	return row, nil
}

// GET /api/recipes
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var recipes []models.Recipe
		if err := database.DB.Preload("Ingredients").Order("name asc").Find(&recipes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçeteler listelenemedi")
		}
		return c.JSON(recipes)
	}
}

// GET /api/recipes/:id
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz reçete ID")
		if err != nil {
			return err
		}

		var r models.Recipe
		if err := database.DB.Preload("Ingredients").First(&r, id).Error; err != nil {
			return notFoundOr(err, "Reçete bulunamadı", "Reçete okunamadı")
		}
		return c.JSON(r)
	}
}

// POST /api/admin/recipes
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Reçete adı zorunlu")
		}

		r := models.Recipe{Name: body.Name, Type: strings.TrimSpace(body.Type)}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete oluşturulamadı")
		}

		writeAudit(c, "recipe", r.ID, models.AuditActionCreate, fmt.Sprintf("Reçete oluşturuldu: %s", r.Name), nil, r)
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// DELETE /api/admin/recipes/:id
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz reçete ID")
		if err != nil {
			return err
		}

		var r models.Recipe
		if err := database.DB.Preload("Ingredients").First(&r, id).Error; err != nil {
			return notFoundOr(err, "Reçete bulunamadı", "Reçete okunamadı")
		}

		var used int64
		database.DB.Model(&models.Product{}).Where("recipe_id = ?", id).Count(&used)
		if used == 0 {
			database.DB.Model(&models.RecipeIngredient{}).Where("nested_recipe_id = ?", id).Count(&used)
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Kullanımdaki reçete silinemez")
		}

		if err := database.DB.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete satırları silinemedi")
		}
		if err := database.DB.Delete(&models.Recipe{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete silinemedi")
		}

		writeAudit(c, "recipe", r.ID, models.AuditActionDelete, fmt.Sprintf("Reçete silindi: %s", r.Name), r, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/recipes/:id/ingredients
func AddRecipeRowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz reçete ID")
		if err != nil {
			return err
		}
		if !exists(database.DB, &models.Recipe{}, id) {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var body RecipeRowRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.NestedRecipeID != nil && *body.NestedRecipeID == id {
			return fiber.NewError(fiber.StatusBadRequest, "Reçete kendisini içeremez")
		}

		row, err := body.toRow()
		if err != nil {
			return err
		}
		row.RecipeID = &id

		if err := database.DB.Create(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete satırı eklenemedi")
		}

		writeAudit(c, "recipe", id, models.AuditActionUpdate, fmt.Sprintf("Reçeteye satır eklendi (satır %d)", row.ID), nil, row)
		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

// GET /api/products/:id/ingredients
func ListProductRowsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz ürün ID")
		if err != nil {
			return err
		}

		var rows []models.RecipeIngredient
		if err := database.DB.Where("product_id = ?", id).Order("id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün reçetesi listelenemedi")
		}
		return c.JSON(rows)
	}
}

// POST /api/admin/products/:id/ingredients
// Ürünün kendi malzeme listesine satır ekler ve has_recipe bayrağını açar.
func AddProductRowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz ürün ID")
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return notFoundOr(err, "Ürün bulunamadı", "Ürün okunamadı")
		}

		var body RecipeRowRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		row, err := body.toRow()
		if err != nil {
			return err
		}
		row.ProductID = &id

		if err := database.DB.Create(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün reçete satırı eklenemedi")
		}
		if !p.HasRecipe {
			if err := database.DB.Model(&p).Update("has_recipe", true).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
			}
		}

		writeAudit(c, "product", id, models.AuditActionUpdate, fmt.Sprintf("Ürün reçetesine satır eklendi (satır %d)", row.ID), nil, row)
		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

// DELETE /api/admin/recipe-ingredients/:id
func DeleteRecipeRowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz satır ID")
		if err != nil {
			return err
		}

		var row models.RecipeIngredient
		if err := database.DB.First(&row, id).Error; err != nil {
			return notFoundOr(err, "Reçete satırı bulunamadı", "Reçete satırı okunamadı")
		}
		if err := database.DB.Delete(&models.RecipeIngredient{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete satırı silinemedi")
		}

		entity, entityID := "recipe", uint(0)
		if row.RecipeID != nil {
			entityID = *row.RecipeID
		} else if row.ProductID != nil {
			entity, entityID = "product", *row.ProductID
		}
		writeAudit(c, entity, entityID, models.AuditActionUpdate, fmt.Sprintf("Reçete satırı silindi (satır %d)", row.ID), row, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
