package models

import "time"

type ProductType string

const (
	ProductTypePlain      ProductType = "plain"
	ProductTypeIngredient ProductType = "ingredient" // stoğu bir malzeme kaydıyla birlikte tutulan ürün
	ProductTypeRecipe     ProductType = "recipe"
)

type Product struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:100;not null;unique" json:"name"`
	Type         ProductType `gorm:"size:20;not null;default:plain" json:"type"`
	Price        float64     `gorm:"not null;default:0" json:"price"`
	Stock        int         `gorm:"not null;default:0" json:"stock"`       // doğrudan satılabilir adet
	Quantity     float64     `gorm:"not null;default:0" json:"quantity"`    // bağlı malzemenin açık birim miktarı (ayna)
	HasRecipe    bool        `gorm:"not null;default:false" json:"has_recipe"`
	CategoryID   *uint       `gorm:"index" json:"category_id"`   // menü kategorisi
	IngredientID *uint       `gorm:"index" json:"ingredient_id"` // tek bir malzemeye bağlı satış
	RecipeID     *uint       `gorm:"index" json:"recipe_id"`     // paylaşılan bir reçeteye bağlı satış
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
