package inventory

import (
	"fmt"
	"strings"

	"venue-backend/internal/database"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductCategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	SortOrder    int    `json:"sort_order"`
	ProductCount int64  `json:"product_count"`
}

type ProductCategoryRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

func (r ProductCategoryRequest) apply(cat *models.ProductCategory) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
		}
		var count int64
		database.DB.Model(&models.ProductCategory{}).Where("name = ? AND id <> ?", name, cat.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu isimde bir kategori zaten var")
		}
		cat.Name = name
	}
	if r.SortOrder != nil {
		cat.SortOrder = *r.SortOrder
	}
	return nil
}

// GET /api/product-categories
func ListProductCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.ProductCategory
		if err := database.DB.Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		res := make([]ProductCategoryResponse, 0, len(categories))
		for _, cat := range categories {
			var count int64
			database.DB.Model(&models.Product{}).Where("category_id = ?", cat.ID).Count(&count)
			res = append(res, ProductCategoryResponse{
				ID:           cat.ID,
				Name:         cat.Name,
				SortOrder:    cat.SortOrder,
				ProductCount: count,
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/product-categories
func CreateProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.Name == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı zorunlu")
		}

		var cat models.ProductCategory
		if err := body.apply(&cat); err != nil {
			return err
		}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		writeAudit(c, "product_category", cat.ID, models.AuditActionCreate, fmt.Sprintf("Kategori oluşturuldu: %s", cat.Name), nil, cat)
		return c.Status(fiber.StatusCreated).JSON(ProductCategoryResponse{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder})
	}
}

// PUT /api/admin/product-categories/:id
func UpdateProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz kategori ID")
		if err != nil {
			return err
		}

		var cat models.ProductCategory
		if err := database.DB.First(&cat, id).Error; err != nil {
			return notFoundOr(err, "Kategori bulunamadı", "Kategori okunamadı")
		}
		before := cat

		var body ProductCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if err := body.apply(&cat); err != nil {
			return err
		}
		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}

		writeAudit(c, "product_category", cat.ID, models.AuditActionUpdate, fmt.Sprintf("Kategori güncellendi: %s", cat.Name), before, cat)
		return c.JSON(ProductCategoryResponse{ID: cat.ID, Name: cat.Name, SortOrder: cat.SortOrder})
	}
}

// DELETE /api/admin/product-categories/:id
func DeleteProductCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz kategori ID")
		if err != nil {
			return err
		}

		var cat models.ProductCategory
		if err := database.DB.First(&cat, id).Error; err != nil {
			return notFoundOr(err, "Kategori bulunamadı", "Kategori okunamadı")
		}

		// Kategoriye ait ürün var mı
		var count int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kategoriye ait ürünler var, önce ürünleri taşıyın")
		}

		if err := database.DB.Delete(&models.ProductCategory{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}

		writeAudit(c, "product_category", cat.ID, models.AuditActionDelete, fmt.Sprintf("Kategori silindi: %s", cat.Name), cat, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
