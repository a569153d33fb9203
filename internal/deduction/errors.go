package deduction

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity  = errors.New("düşülecek miktar pozitif olmalı")
	ErrInvalidComponent = errors.New("reçete satırı ya bir malzemeye ya da bir alt reçeteye bağlı olmalı")
)

// InsufficientStockError stok ya da açık birim miktarı siparişi karşılamadığında döner.
type InsufficientStockError struct {
	Entity    string // "product" / "ingredient"
	ID        uint
	Name      string
	Unit      string
	Available float64
	Required  float64
}

func (e *InsufficientStockError) Error() string {
	unit := e.Unit
	if unit == "" {
		unit = "adet"
	}
	return fmt.Sprintf("yetersiz stok: %s (mevcut: %.2f %s, gereken: %.2f %s)",
		e.Name, e.Available, unit, e.Required, unit)
}

// NotFoundError düşülmesi zorunlu bir kayıt (ürün, malzeme, reçete) bulunamadığında döner.
// Eksik bir bağlantı (ör. ürüne bağlı malzeme yok) hata değildir.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s bulunamadı (ID: %d)", e.Entity, e.ID)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
