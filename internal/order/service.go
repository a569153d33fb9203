// Package order sipariş kaydını ve teslim anında tetiklenen stok düşümünü yönetir.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-backend/internal/audit"
	"venue-backend/internal/deduction"
	"venue-backend/internal/lock"
	"venue-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("sipariş bulunamadı")
	ErrAlreadyDelivered   = errors.New("sipariş zaten teslim edilmiş")
	ErrOrderBusy          = errors.New("sipariş şu anda işleniyor")
	ErrInvalidStatus      = errors.New("geçersiz sipariş durumu")
)

// Deducter siparişin stok düşümünü yapar; *deduction.Engine bunu sağlar.
type Deducter interface {
	DeductOrder(ctx context.Context, orderID uint, items []deduction.Item) error
}

type Service struct {
	db       *gorm.DB
	deducter Deducter
	locker   lock.Locker
	lockTTL  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, deducter Deducter, locker lock.Locker, lockTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewMemory()
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &Service{
		db:       db,
		deducter: deducter,
		locker:   locker,
		lockTTL:  lockTTL,
		log:      log.Named("order"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func orderLockKey(id uint) string {
	return fmt.Sprintf("order:%d", id)
}

type StatusChange struct {
	OrderID uint
	Status  models.OrderStatus
	Note    *string
	UserID  uint
}

func (s *Service) load(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus durum değişikliğini uygular. Teslim edilmemiş bir sipariş "delivered"
// durumuna geçerken stok düşümü çalışır; düşüm başarısızsa durum değişmez.
func (s *Service) UpdateStatus(ctx context.Context, change StatusChange) (*models.Order, error) {
	if !change.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	// teslim sırasında gelen iptal gibi değişiklikler de aynı kilidi bekler
	key := orderLockKey(change.OrderID)
	token, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("sipariş kilidi alınamadı: %w", err)
	}
	if !ok {
		return nil, ErrOrderBusy
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("sipariş kilidi bırakılamadı", zap.Uint("order_id", change.OrderID), zap.Error(err))
		}
	}()

	o, err := s.load(ctx, change.OrderID)
	if err != nil {
		return nil, err
	}
	before := *o

	// teslim edilmiş sipariş son durumdadır; düşüm geri alınmaz
	if o.Status == models.OrderStatusDelivered {
		return nil, ErrAlreadyDelivered
	}

	updates := map[string]interface{}{"status": change.Status}
	if change.Note != nil {
		updates["note"] = *change.Note
	}

	action := models.AuditActionUpdate
	if change.Status == models.OrderStatusDelivered {
		items := make([]deduction.Item, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, deduction.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if err := s.deducter.DeductOrder(ctx, o.ID, items); err != nil {
			return nil, err
		}
		updates["delivered_at"] = s.now()
		action = models.AuditActionDeliver
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
		if action == models.AuditActionDeliver {
			s.log.Error("stok düşüldü ancak sipariş durumu yazılamadı", zap.Uint("order_id", o.ID), zap.Error(err))
		}
		return nil, fmt.Errorf("sipariş güncellenemedi: %w", err)
	}

	updated, err := s.load(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	if err := audit.WriteLogTx(s.db.WithContext(ctx), audit.LogOptions{
		UserID:      change.UserID,
		EntityType:  "order",
		EntityID:    o.ID,
		Action:      action,
		Description: fmt.Sprintf("Sipariş #%d durumu: %s -> %s", o.ID, before.Status, updated.Status),
		Before:      before,
		After:       updated,
	}); err != nil {
		s.log.Warn("audit log yazılamadı", zap.Uint("order_id", o.ID), zap.Error(err))
	}

	s.log.Info("sipariş durumu güncellendi",
		zap.Uint("order_id", o.ID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(updated.Status)),
	)
	return updated, nil
}
