package models

import "time"

// StockMovement: stok düşümünde değişen her alanın önceki/sonraki hali
type StockMovement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    *uint     `gorm:"index" json:"order_id"`
	EntityType string    `gorm:"size:20;index;not null" json:"entity_type"` // "product" / "ingredient"
	EntityID   uint      `gorm:"index;not null" json:"entity_id"`
	Field      string    `gorm:"size:20;not null" json:"field"` // "stock" / "quantity"
	Before     float64   `json:"before"`
	After      float64   `json:"after"`
	Reason     string    `gorm:"size:50" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
