package deduction

import (
	"math"

	"venue-backend/internal/models"
)

// float karşılaştırmalarında 0.1+0.2 gibi toplamların yeni birim açtırmaması için
const epsilon = 1e-9

// Consumption bir malzemeden düşüm sonrası yeni durum.
type Consumption struct {
	Stock       int
	Quantity    float64
	UnitsOpened int
}

// Consume açık birimden başlayarak totalNeeded kadar malzeme tüketir; açık birim yetmezse
// kapalı birimler sırayla açılır. Toplam mevcut (quantity + stock*original_quantity)
// yetmiyorsa hiçbir şey hesaplanmadan InsufficientStockError döner.
func Consume(ing models.Ingredient, totalNeeded float64) (Consumption, error) {
	if totalNeeded < 0 {
		return Consumption{}, ErrInvalidQuantity
	}

	if totalNeeded <= ing.Quantity+epsilon {
		return Consumption{
			Stock:    ing.Stock,
			Quantity: clampZero(ing.Quantity - totalNeeded),
		}, nil
	}

	available := ing.Quantity + float64(ing.Stock)*ing.OriginalQuantity
	if ing.Stock < 1 || ing.OriginalQuantity <= 0 || totalNeeded > available+epsilon {
		return Consumption{}, &InsufficientStockError{
			Entity:    "ingredient",
			ID:        ing.ID,
			Name:      ing.Name,
			Unit:      ing.Unit,
			Available: clampZero(available),
			Required:  totalNeeded,
		}
	}

	// açık birim tamamen bitti; kalan ihtiyacı karşılayacak kadar birim açılır
	remaining := totalNeeded - ing.Quantity
	opened := int(math.Ceil((remaining - epsilon) / ing.OriginalQuantity))
	opened = min(max(opened, 1), ing.Stock)
	stock := ing.Stock - opened
	remaining -= float64(opened-1) * ing.OriginalQuantity

	return Consumption{
		Stock:       max(stock, 0),
		Quantity:    clampZero(ing.OriginalQuantity - remaining),
		UnitsOpened: opened,
	}, nil
}

func clampZero(v float64) float64 {
	if v < epsilon {
		return 0
	}
	return v
}
