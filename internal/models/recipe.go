package models

import "time"

type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"size:100;not null" json:"name"`
	Type        string             `gorm:"size:50" json:"type"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RecipeIngredient bir reçetenin ya da doğrudan bir ürünün bileşen satırı.
// IngredientID ve NestedRecipeID'den tam olarak biri dolu olmalı.
type RecipeIngredient struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RecipeID       *uint     `gorm:"index" json:"recipe_id"`  // paylaşılan reçete satırı
	ProductID      *uint     `gorm:"index" json:"product_id"` // ürünün kendi malzeme listesi
	IngredientID   *uint     `gorm:"index" json:"ingredient_id"`
	NestedRecipeID *uint     `gorm:"index" json:"nested_recipe_id"`
	DeductQuantity float64   `gorm:"not null;default:0" json:"deduct_quantity"` // üretilen tek birim başına
	DeductStock    float64   `gorm:"not null;default:0" json:"deduct_stock"`    // birim başına gereken alt reçete sayısı
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
