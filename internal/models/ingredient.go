package models

import "time"

// Ingredient: kapalı birim (Stock) + açık birimde kalan miktar (Quantity) ile takip edilen malzeme
type Ingredient struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Unit             string    `gorm:"size:20;not null" json:"unit"`    // ml, gr, adet vs.
	Stock            int       `gorm:"not null;default:0" json:"stock"` // açılmamış birim sayısı
	Quantity         float64   `gorm:"not null;default:0" json:"quantity"`
	OriginalQuantity float64   `gorm:"not null;default:0" json:"original_quantity"` // bir birimin kapasitesi
	ProductID        *uint     `gorm:"index" json:"product_id"`                     // aynalanan ürün (opsiyonel)
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
