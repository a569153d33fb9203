package order

import (
	"errors"
	"fmt"
	"strings"

	"venue-backend/internal/audit"
	"venue-backend/internal/auth"
	"venue-backend/internal/database"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	Note  string             `json:"note"`
	Items []OrderItemRequest `json:"items"`
}

type UpdateOrderRequest struct {
	ID     uint               `json:"id"`
	Status models.OrderStatus `json:"status"`
	Note   *string            `json:"note"`
}

type OrderItemResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type OrderResponse struct {
	ID          uint                `json:"id"`
	UserID      uint                `json:"user_id"`
	Status      models.OrderStatus  `json:"status"`
	Note        string              `json:"note"`
	DeliveredAt *string             `json:"delivered_at"`
	CreatedAt   string              `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
}

func toOrderResponse(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Note:      o.Note,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
	}
	if o.DeliveredAt != nil {
		s := o.DeliveredAt.Format("2006-01-02 15:04:05")
		resp.DeliveredAt = &s
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
		})
	}
	return resp
}

func loadOrder(id uint) (*models.Order, error) {
	var o models.Order
	if err := database.DB.Preload("Items.Product").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// POST /api/orders
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş en az bir kalem içermeli")
		}

		userID, _ := auth.CurrentUserID(c)
		o := models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
			Note:   strings.TrimSpace(body.Note),
		}

		for i, it := range body.Items {
			if it.ProductID == 0 || it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Kalem %d: ürün ve pozitif adet zorunlu", i+1))
			}
			var count int64
			database.DB.Model(&models.Product{}).Where("id = ?", it.ProductID).Count(&count)
			if count == 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Kalem %d: ürün bulunamadı (%d)", i+1, it.ProductID))
			}
			o.Items = append(o.Items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		if err := database.DB.Create(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş oluşturulamadı")
		}

		created, err := loadOrder(o.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş okunamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sipariş #%d oluşturuldu (%d kalem)", o.ID, len(o.Items)),
			After:       created,
		})

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(*created))
	}
}

// GET /api/orders?status=pending
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Order{}).Preload("Items.Product")

		if status := models.OrderStatus(c.Query("status")); status != "" {
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş durumu")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var orders []models.Order
		if err := dbq.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, toOrderResponse(o))
		}
		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}

		o, err := loadOrder(uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş okunamadı")
		}
		return c.JSON(toOrderResponse(*o))
	}
}

// PUT /api/orders
// Gövde: {"id": 1, "status": "delivered", "note": "..."}
func UpdateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş ID zorunlu")
		}

		userID, _ := auth.CurrentUserID(c)
		_, err := svc.UpdateStatus(c.UserContext(), StatusChange{
			OrderID: body.ID,
			Status:  body.Status,
			Note:    body.Note,
			UserID:  userID,
		})
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidStatus):
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş durumu")
		case errors.Is(err, ErrOrderNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		case errors.Is(err, ErrAlreadyDelivered), errors.Is(err, ErrOrderBusy):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		default:
			// stok yetersizliği dahil düşüm hataları
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		o, err := loadOrder(body.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş okunamadı")
		}
		return c.JSON(toOrderResponse(*o))
	}
}
