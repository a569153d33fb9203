package inventory

import (
	"context"
	"errors"

	"venue-backend/internal/audit"
	"venue-backend/internal/auth"
	"venue-backend/internal/deduction"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StockAdjuster malzeme stoğunu bağlı ürüne aynalayarak yazar; *deduction.Engine bunu sağlar.
type StockAdjuster interface {
	ApplyDeduction(ctx context.Context, ingredientID uint, newStock int, newQuantity float64) error
	Restock(ctx context.Context, ingredientID uint, units int) error
}

func paramID(c *fiber.Ctx, msg string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return uint(id), nil
}

func notFoundOr(err error, notFound, other string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, other)
}

func exists(db *gorm.DB, model any, id uint) bool {
	var count int64
	db.Model(model).Where("id = ?", id).Count(&count)
	return count > 0
}

func writeAudit(c *fiber.Ctx, entity string, id uint, action models.AuditAction, desc string, before, after any) {
	userID, _ := auth.CurrentUserID(c)
	_ = audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

// stockError motor hatalarını HTTP hatasına çevirir.
func stockError(err error) error {
	switch {
	case errors.Is(err, deduction.ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case deduction.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
