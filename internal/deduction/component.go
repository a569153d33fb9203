package deduction

import (
	"fmt"

	"venue-backend/internal/models"
)

// RecipeComponent bir reçete satırının ne düştüğünü söyler: ya bir malzeme ya da bir alt reçete.
type RecipeComponent interface {
	rowID() uint
}

type IngredientRef struct {
	RowID          uint
	IngredientID   uint
	DeductQuantity float64
}

type NestedRecipeRef struct {
	RowID       uint
	RecipeID    uint
	DeductStock float64
}

func (r IngredientRef) rowID() uint   { return r.RowID }
func (r NestedRecipeRef) rowID() uint { return r.RowID }

// ComponentOf satırdaki nullable foreign key'lerden bileşen tipini çıkarır.
func ComponentOf(row models.RecipeIngredient) (RecipeComponent, error) {
	switch {
	case row.IngredientID != nil && row.NestedRecipeID != nil:
		return nil, fmt.Errorf("satır %d: %w", row.ID, ErrInvalidComponent)
	case row.IngredientID != nil:
		return IngredientRef{RowID: row.ID, IngredientID: *row.IngredientID, DeductQuantity: row.DeductQuantity}, nil
	case row.NestedRecipeID != nil:
		return NestedRecipeRef{RowID: row.ID, RecipeID: *row.NestedRecipeID, DeductStock: row.DeductStock}, nil
	default:
		return nil, fmt.Errorf("satır %d: %w", row.ID, ErrInvalidComponent)
	}
}

func componentsOf(rows []models.RecipeIngredient) ([]IngredientRef, []NestedRecipeRef, error) {
	var ingredients []IngredientRef
	var nested []NestedRecipeRef
	for _, row := range rows {
		c, err := ComponentOf(row)
		if err != nil {
			return nil, nil, err
		}
		switch v := c.(type) {
		case IngredientRef:
			ingredients = append(ingredients, v)
		case NestedRecipeRef:
			nested = append(nested, v)
		}
	}
	return ingredients, nested, nil
}

// ingredientDemand aynı malzemeye ait satırların birim başına toplamı.
type ingredientDemand struct {
	IngredientID uint
	PerUnit      float64
}

// groupIngredients aynı malzemeyi gösteren satırları toplar; ilk görülme sırası korunur.
func groupIngredients(refs []IngredientRef) []ingredientDemand {
	index := make(map[uint]int, len(refs))
	out := make([]ingredientDemand, 0, len(refs))
	for _, ref := range refs {
		if i, ok := index[ref.IngredientID]; ok {
			out[i].PerUnit += ref.DeductQuantity
			continue
		}
		index[ref.IngredientID] = len(out)
		out = append(out, ingredientDemand{IngredientID: ref.IngredientID, PerUnit: ref.DeductQuantity})
	}
	return out
}
