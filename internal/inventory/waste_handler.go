package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venue-backend/internal/auth"
	"venue-backend/internal/database"
	"venue-backend/internal/deduction"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// IngredientConsumer sipariş dışı malzeme tüketimini düşer; *deduction.Engine bunu sağlar.
type IngredientConsumer interface {
	ConsumeIngredient(ctx context.Context, ingredientID uint, amount float64, reason string, record func(tx *gorm.DB) error) error
}

type CreateWasteEntryRequest struct {
	Date         string  `json:"date"`          // "2025-12-09", boşsa bugün
	IngredientID uint    `json:"ingredient_id"` // zorunlu
	Quantity     float64 `json:"quantity"`      // zorunlu, malzemenin biriminde
	Note         string  `json:"note"`          // zorunlu: hangi garson/barmen sebep oldu
}

type WasteEntryResponse struct {
	ID             uint    `json:"id"`
	IngredientID   uint    `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Unit           string  `json:"unit"`
	UserID         uint    `json:"user_id"`
	Date           string  `json:"date"`
	Quantity       float64 `json:"quantity"`
	Note           string  `json:"note"`
	CreatedAt      string  `json:"created_at"`
}

func toWasteResponse(e models.WasteEntry) WasteEntryResponse {
	return WasteEntryResponse{
		ID:             e.ID,
		IngredientID:   e.IngredientID,
		IngredientName: e.Ingredient.Name,
		Unit:           e.Ingredient.Unit,
		UserID:         e.UserID,
		Date:           e.Date.Format("2006-01-02"),
		Quantity:       e.Quantity,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/waste-entries
// Zayiat, satıştaki gibi önce açık birimden düşülür ve bağlı ürüne aynalanır.
func CreateWasteEntryHandler(consumer IngredientConsumer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWasteEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.IngredientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ingredient_id zorunludur")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalıdır")
		}
		body.Note = strings.TrimSpace(body.Note)
		if len([]rune(body.Note)) < 3 {
			return fiber.NewError(fiber.StatusBadRequest, "note zorunludur ve en az 3 karakter olmalıdır")
		}

		d := time.Now().UTC().Truncate(24 * time.Hour)
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			d = parsed
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, body.IngredientID).Error; err != nil {
			return notFoundOr(err, "Malzeme bulunamadı", "Malzeme okunamadı")
		}

		userID, _ := auth.CurrentUserID(c)
		entry := models.WasteEntry{
			IngredientID: ing.ID,
			UserID:       userID,
			Date:         d,
			Quantity:     body.Quantity,
			Note:         body.Note,
		}

		err := consumer.ConsumeIngredient(c.UserContext(), ing.ID, body.Quantity, "waste", func(tx *gorm.DB) error {
			return tx.Omit("Ingredient").Create(&entry).Error
		})
		switch {
		case err == nil:
		case deduction.IsInsufficientStock(err):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		default:
			return stockError(err)
		}

		entry.Ingredient = ing
		writeAudit(c, "waste_entry", entry.ID, models.AuditActionCreate,
			fmt.Sprintf("Zayiat girişi: %s - %.2f %s (Not: %s)", ing.Name, entry.Quantity, ing.Unit, entry.Note),
			nil, entry)

		return c.Status(fiber.StatusCreated).JSON(toWasteResponse(entry))
	}
}

// GET /api/waste-entries?date_from=2025-12-01&date_to=2025-12-31&ingredient_id=3
func ListWasteEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Ingredient")

		if d, err := time.Parse("2006-01-02", c.Query("date_from")); err == nil {
			query = query.Where("date >= ?", d)
		}
		if d, err := time.Parse("2006-01-02", c.Query("date_to")); err == nil {
			// gün sonuna kadar
			query = query.Where("date < ?", d.Add(24*time.Hour))
		}
		if id := c.QueryInt("ingredient_id"); id > 0 {
			query = query.Where("ingredient_id = ?", id)
		}

		var entries []models.WasteEntry
		if err := query.Order("date DESC, created_at DESC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zayiat girişleri listelenemedi")
		}

		resp := make([]WasteEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toWasteResponse(e))
		}
		return c.JSON(resp)
	}
}

// GET /api/waste-entries/:id
func GetWasteEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "Geçersiz zayiat ID")
		if err != nil {
			return err
		}

		var entry models.WasteEntry
		if err := database.DB.Preload("Ingredient").First(&entry, id).Error; err != nil {
			return notFoundOr(err, "Zayiat girişi bulunamadı", "Zayiat girişi okunamadı")
		}
		return c.JSON(toWasteResponse(entry))
	}
}

var _ IngredientConsumer = (*deduction.Engine)(nil)
