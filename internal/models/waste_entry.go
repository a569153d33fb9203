package models

import "time"

// WasteEntry: malzeme zayiatı kaydı (dökülen, bozulan). Miktar malzemenin biriminde.
type WasteEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	IngredientID uint       `gorm:"index;not null" json:"ingredient_id"`
	Ingredient   Ingredient `json:"-"`
	UserID       uint       `gorm:"index" json:"user_id"`
	Date         time.Time  `gorm:"index;not null" json:"date"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Note         string     `gorm:"size:500;not null" json:"note"` // zorunlu: sebep / sorumlu
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
