package inventory

import (
	"fmt"
	"strings"

	"venue-backend/internal/database"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductRequest struct {
	Name         *string             `json:"name"`
	Type         *models.ProductType `json:"type"`
	Price        *float64            `json:"price"`
	Stock        *int                `json:"stock"`
	HasRecipe    *bool               `json:"has_recipe"`
	IngredientID *uint               `json:"ingredient_id"`
	RecipeID     *uint               `json:"recipe_id"`
	CategoryID   *uint               `json:"category_id"`
}

func validProductType(t models.ProductType) bool {
	switch t {
	case models.ProductTypePlain, models.ProductTypeIngredient, models.ProductTypeRecipe:
		return true
	}
	return false
}

// apply gövdedeki dolu alanları ürüne yazar. 0 değerli bağlantı id'si bağlantıyı kaldırır.
func (r ProductRequest) apply(p *models.Product) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
		}
		p.Name = name
	}
	if r.Type != nil {
		if !validProductType(*r.Type) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün tipi")
		}
		p.Type = *r.Type
	}
	if r.Price != nil {
		if *r.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}
		p.Price = *r.Price
	}
	if r.Stock != nil {
		if *r.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}
		p.Stock = *r.Stock
	}
	if r.HasRecipe != nil {
		p.HasRecipe = *r.HasRecipe
	}
	if r.IngredientID != nil {
		if *r.IngredientID == 0 {
			p.IngredientID = nil
		} else {
			if !exists(database.DB, &models.Ingredient{}, *r.IngredientID) {
				return fiber.NewError(fiber.StatusBadRequest, "Bağlı malzeme bulunamadı")
			}
			id := *r.IngredientID
			p.IngredientID = &id
		}
	}
	if r.RecipeID != nil {
		if *r.RecipeID == 0 {
			p.RecipeID = nil
		} else {
			if !exists(database.DB, &models.Recipe{}, *r.RecipeID) {
				return fiber.NewError(fiber.StatusBadRequest, "Bağlı reçete bulunamadı")
			}
			id := *r.RecipeID
			p.RecipeID = &id
		}
	}
	if r.CategoryID != nil {
		if *r.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			if !exists(database.DB, &models.ProductCategory{}, *r.CategoryID) {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
			}
			id := *r.CategoryID
			p.CategoryID = &id
		}
	}
	return nil
}

// GET /api/products?type=recipe&category_id=2
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})
		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
		}
		if cid := c.QueryInt("category_id"); cid > 0 {
			dbq = dbq.Where("category_id = ?", cid)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}
		return c.JSON(products)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz ürün ID")
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return notFoundOr(err, "Ürün bulunamadı", "Ürün okunamadı")
		}
		return c.JSON(p)
	}
}

// POST /api/admin/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.Name == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}

		p := models.Product{Type: models.ProductTypePlain}
		if err := body.apply(&p); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Product{}).Where("name = ?", p.Name).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir ürün zaten var")
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		writeAudit(c, "product", p.ID, models.AuditActionCreate, fmt.Sprintf("Ürün oluşturuldu: %s", p.Name), nil, p)
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz ürün ID")
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return notFoundOr(err, "Ürün bulunamadı", "Ürün okunamadı")
		}
		before := p

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if err := body.apply(&p); err != nil {
			return err
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		writeAudit(c, "product", p.ID, models.AuditActionUpdate, fmt.Sprintf("Ürün güncellendi: %s", p.Name), before, p)
		return c.JSON(p)
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz ürün ID")
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return notFoundOr(err, "Ürün bulunamadı", "Ürün okunamadı")
		}

		var used int64
		database.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&used)
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Siparişlerde kullanılan ürün silinemez")
		}

		if err := database.DB.Where("product_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün reçetesi silinemedi")
		}
		if err := database.DB.Model(&models.Ingredient{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme bağlantısı kaldırılamadı")
		}
		if err := database.DB.Delete(&models.Product{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		writeAudit(c, "product", p.ID, models.AuditActionDelete, fmt.Sprintf("Ürün silindi: %s", p.Name), p, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
