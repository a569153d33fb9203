package deduction

import (
	"context"
	"fmt"

	"venue-backend/internal/models"
)

type ingredientEntry struct {
	before  models.Ingredient
	current models.Ingredient
}

type productEntry struct {
	before  models.Product
	current models.Product
}

// plan bir sipariş kaleminin tüm yazımlarını önce bellekte hesaplar. Aynı malzemeye
// birden fazla yoldan (gruplanmış satırlar, alt reçeteler) ulaşıldığında güncel değer
// üzerinden devam edilir; hiçbir yetersizlik yoksa apply ile tek seferde yazılır.
type plan struct {
	repo    *repository
	orderID *uint
	reason  string

	ingredients     map[uint]*ingredientEntry
	ingredientOrder []uint
	products        map[uint]*productEntry
	productOrder    []uint
}

func newPlan(repo *repository, orderID *uint, reason string) *plan {
	return &plan{
		repo:        repo,
		orderID:     orderID,
		reason:      reason,
		ingredients: make(map[uint]*ingredientEntry),
		products:    make(map[uint]*productEntry),
	}
}

func (p *plan) ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	if e, ok := p.ingredients[id]; ok {
		return &e.current, nil
	}
	ing, err := p.repo.ingredient(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.trackIngredient(ing), nil
}

func (p *plan) ingredientByProduct(ctx context.Context, productID uint) (*models.Ingredient, error) {
	for _, id := range p.ingredientOrder {
		e := p.ingredients[id]
		if e.current.ProductID != nil && *e.current.ProductID == productID {
			return &e.current, nil
		}
	}
	ing, err := p.repo.ingredientByProduct(ctx, productID)
	if err != nil || ing == nil {
		return nil, err
	}
	return p.trackIngredient(ing), nil
}

func (p *plan) trackIngredient(ing *models.Ingredient) *models.Ingredient {
	if e, ok := p.ingredients[ing.ID]; ok {
		return &e.current
	}
	e := &ingredientEntry{before: *ing, current: *ing}
	p.ingredients[ing.ID] = e
	p.ingredientOrder = append(p.ingredientOrder, ing.ID)
	return &e.current
}

func (p *plan) product(ctx context.Context, id uint) (*models.Product, error) {
	if e, ok := p.products[id]; ok {
		return &e.current, nil
	}
	prod, err := p.repo.product(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.trackProduct(prod), nil
}

func (p *plan) findProduct(ctx context.Context, id uint) (*models.Product, error) {
	if e, ok := p.products[id]; ok {
		return &e.current, nil
	}
	prod, err := p.repo.findProduct(ctx, id)
	if err != nil || prod == nil {
		return nil, err
	}
	return p.trackProduct(prod), nil
}

func (p *plan) trackProduct(prod *models.Product) *models.Product {
	e := &productEntry{before: *prod, current: *prod}
	p.products[prod.ID] = e
	p.productOrder = append(p.productOrder, prod.ID)
	return &e.current
}

// setIngredient malzemenin yeni stok/miktarını yazar. mirror true ise malzemenin
// product_id'si ile bağlı ürüne aynı değerler aynalanır; bağlı ürün yoksa sessizce geçilir.
// Dönen değer aynalanan ürünün ID'si (yoksa 0).
func (p *plan) setIngredient(ctx context.Context, ing *models.Ingredient, stock int, quantity float64, mirror bool) (uint, error) {
	ing.Stock = stock
	ing.Quantity = quantity
	if !mirror || ing.ProductID == nil {
		return 0, nil
	}
	prod, err := p.findProduct(ctx, *ing.ProductID)
	if err != nil {
		return 0, err
	}
	if prod == nil {
		return 0, nil
	}
	prod.Stock = stock
	prod.Quantity = quantity
	return prod.ID, nil
}

// consume Consume sonucunu aynalama ile birlikte plana işler.
func (p *plan) consume(ctx context.Context, ingredientID uint, totalNeeded float64) error {
	ing, err := p.ingredient(ctx, ingredientID)
	if err != nil {
		return err
	}
	c, err := Consume(*ing, totalNeeded)
	if err != nil {
		return err
	}
	_, err = p.setIngredient(ctx, ing, c.Stock, c.Quantity, true)
	return err
}

// movements plandaki değişen alanlar.
func (p *plan) movements() []models.StockMovement {
	var out []models.StockMovement
	add := func(entity string, id uint, field string, before, after float64) {
		if before == after {
			return
		}
		out = append(out, models.StockMovement{
			OrderID:    p.orderID,
			EntityType: entity,
			EntityID:   id,
			Field:      field,
			Before:     before,
			After:      after,
			Reason:     p.reason,
		})
	}
	for _, id := range p.ingredientOrder {
		e := p.ingredients[id]
		add("ingredient", id, "stock", float64(e.before.Stock), float64(e.current.Stock))
		add("ingredient", id, "quantity", e.before.Quantity, e.current.Quantity)
	}
	for _, id := range p.productOrder {
		e := p.products[id]
		add("product", id, "stock", float64(e.before.Stock), float64(e.current.Stock))
		add("product", id, "quantity", e.before.Quantity, e.current.Quantity)
	}
	return out
}

// apply planı veritabanına yazar: önce malzemeler, sonra ürünler.
func (p *plan) apply(ctx context.Context) error {
	for _, id := range p.ingredientOrder {
		e := p.ingredients[id]
		if e.before.Stock == e.current.Stock && e.before.Quantity == e.current.Quantity {
			continue
		}
		if err := p.repo.updateIngredient(ctx, id, e.current.Stock, e.current.Quantity); err != nil {
			return fmt.Errorf("malzeme %d güncellenemedi: %w", id, err)
		}
	}
	for _, id := range p.productOrder {
		e := p.products[id]
		if e.before.Stock == e.current.Stock && e.before.Quantity == e.current.Quantity {
			continue
		}
		if err := p.repo.updateProduct(ctx, id, e.current.Stock, e.current.Quantity); err != nil {
			return fmt.Errorf("ürün %d güncellenemedi: %w", id, err)
		}
	}
	if err := p.repo.recordMovements(ctx, p.movements()); err != nil {
		return fmt.Errorf("stok hareketleri kaydedilemedi: %w", err)
	}
	return nil
}
