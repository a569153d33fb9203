package deduction

import (
	"context"
	"errors"
	"fmt"

	"venue-backend/internal/metrics"
	"venue-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Mode string

const (
	// ModeBestEffort: kalemler sırayla yazılır, hata veren kalemden öncekiler kalıcıdır.
	ModeBestEffort Mode = "best_effort"
	// ModeAtomic: tüm sipariş tek transaction; hata olursa hiçbir satır değişmez.
	ModeAtomic Mode = "atomic"
)

type Strategy string

const (
	StrategyIngredientProduct Strategy = "ingredient_product"
	StrategyDirectIngredient  Strategy = "direct_ingredient"
	StrategyDirectRecipe      Strategy = "direct_recipe"
	StrategyRecipeIngredients Strategy = "recipe_ingredients"
	StrategyPlainStock        Strategy = "plain_stock"
)

// Item siparişin tek kalemi.
type Item struct {
	ProductID uint
	Quantity  int
}

type Engine struct {
	db      *gorm.DB
	mode    Mode
	log     *zap.Logger
	metrics *metrics.Deduction
}

type Option func(*Engine)

func WithMode(mode Mode) Option {
	return func(e *Engine) { e.mode = mode }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithMetrics(m *metrics.Deduction) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{
		db:   db,
		mode: ModeBestEffort,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("deduction")
	return e
}

func (e *Engine) Mode() Mode { return e.mode }

// StrategyFor ürünün hangi düşüm yolunu kullanacağını öncelik sırasına göre seçer.
func StrategyFor(p models.Product) Strategy {
	switch {
	case p.Type == models.ProductTypeIngredient:
		return StrategyIngredientProduct
	case p.IngredientID != nil:
		return StrategyDirectIngredient
	case p.RecipeID != nil:
		return StrategyDirectRecipe
	case p.HasRecipe:
		return StrategyRecipeIngredients
	default:
		return StrategyPlainStock
	}
}

// DeductItem tek bir ürün satışını düşer. Kalem içindeki tüm kontroller yazımdan önce yapılır.
func (e *Engine) DeductItem(ctx context.Context, productID uint, quantity int) (Strategy, error) {
	return e.deductItem(ctx, e.db, nil, Item{ProductID: productID, Quantity: quantity})
}

// DeductOrder sipariş kalemlerini sırayla düşer ve ilk hatada durur.
func (e *Engine) DeductOrder(ctx context.Context, orderID uint, items []Item) error {
	log := e.log.With(zap.Uint("order_id", orderID), zap.String("mode", string(e.mode)))

	var err error
	if e.mode == ModeAtomic {
		err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return e.deductItems(ctx, tx, orderID, items)
		})
	} else {
		err = e.deductItems(ctx, e.db, orderID, items)
	}

	if err != nil {
		e.metrics.ObserveOrder(string(e.mode), resultOf(err))
		log.Warn("sipariş stok düşümü başarısız", zap.Error(err))
		return err
	}
	e.metrics.ObserveOrder(string(e.mode), metrics.ResultSuccess)
	log.Info("sipariş stok düşümü tamamlandı", zap.Int("items", len(items)))
	return nil
}

func (e *Engine) deductItems(ctx context.Context, db *gorm.DB, orderID uint, items []Item) error {
	for i, item := range items {
		if _, err := e.deductItem(ctx, db, &orderID, item); err != nil {
			return fmt.Errorf("kalem %d (ürün %d): %w", i+1, item.ProductID, err)
		}
	}
	return nil
}

// deductItem bir kalemin okumalarını ve yazımlarını tek transaction içinde yapar; db zaten
// bir transaction ise (atomic mod) kalem bir savepoint olarak çalışır.
func (e *Engine) deductItem(ctx context.Context, db *gorm.DB, orderID *uint, item Item) (Strategy, error) {
	if item.Quantity <= 0 {
		return "", ErrInvalidQuantity
	}

	var strategy Strategy
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pl := newPlan(newRepository(tx, true), orderID, "order_delivered")
		product, err := pl.product(ctx, item.ProductID)
		if err != nil {
			return err
		}

		strategy = StrategyFor(*product)
		switch strategy {
		case StrategyIngredientProduct:
			err = e.ingredientProductSale(ctx, pl, product, item.Quantity)
		case StrategyDirectIngredient:
			err = e.directIngredientSale(ctx, pl, product, item.Quantity)
		case StrategyDirectRecipe:
			err = e.directRecipeSale(ctx, pl, product, item.Quantity)
		case StrategyRecipeIngredients:
			err = e.recipeIngredientsSale(ctx, pl, product, item.Quantity)
		default:
			err = e.plainStockSale(pl, product, item.Quantity)
		}
		if err != nil {
			return err
		}
		return pl.apply(ctx)
	})

	// ürün bulunamadıysa strateji yok
	if strategy != "" {
		e.metrics.ObserveItem(string(strategy), resultOf(err))
	}
	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		e.metrics.ObserveInsufficient(insufficient.Entity)
	}
	if err != nil {
		return strategy, err
	}

	e.log.Debug("kalem düşüldü",
		zap.Uint("product_id", item.ProductID),
		zap.String("strategy", string(strategy)),
		zap.Int("quantity", item.Quantity),
	)
	return strategy, nil
}

// ingredientProductSale: ürün stoğu ve product_id ile bağlı malzemenin kapalı birim stoğu
// birbirinden bağımsız olarak aynı adet kadar düşer. Bağlı malzeme yoksa yalnızca ürün düşer.
func (e *Engine) ingredientProductSale(ctx context.Context, pl *plan, product *models.Product, qty int) error {
	if err := deductProductStock(product, qty); err != nil {
		return err
	}
	ing, err := pl.ingredientByProduct(ctx, product.ID)
	if err != nil || ing == nil {
		return err
	}
	if ing.Stock < qty {
		return insufficientIngredientUnits(ing, qty)
	}
	_, err = pl.setIngredient(ctx, ing, ing.Stock-qty, ing.Quantity, false)
	return err
}

// directIngredientSale: bağlı malzemenin kapalı birim stoğu düşer (açık birim hesabı yok),
// aynı düşüm ürünün kendi stoğuna da yansıtılır.
func (e *Engine) directIngredientSale(ctx context.Context, pl *plan, product *models.Product, qty int) error {
	ing, err := pl.ingredient(ctx, *product.IngredientID)
	if err != nil {
		return err
	}
	if ing.Stock < qty {
		return insufficientIngredientUnits(ing, qty)
	}
	mirrored, err := pl.setIngredient(ctx, ing, ing.Stock-qty, ing.Quantity, true)
	if err != nil {
		return err
	}
	if mirrored != product.ID {
		product.Stock = max(product.Stock-qty, 0)
	}
	return nil
}

// directRecipeSale: ürün paylaşılan bir reçeteye bağlı; reçete satırları sipariş adedi ile ölçeklenir.
func (e *Engine) directRecipeSale(ctx context.Context, pl *plan, product *models.Product, qty int) error {
	if _, err := pl.repo.recipe(ctx, *product.RecipeID); err != nil {
		return err
	}
	rows, err := pl.repo.recipeRows(ctx, *product.RecipeID)
	if err != nil {
		return err
	}
	return e.deductComponents(ctx, pl, rows, float64(qty), true)
}

// recipeIngredientsSale: ürünün kendi malzeme listesi; en sonda ürün stoğu sıfırın altına inmeden düşer.
func (e *Engine) recipeIngredientsSale(ctx context.Context, pl *plan, product *models.Product, qty int) error {
	rows, err := pl.repo.productRows(ctx, product.ID)
	if err != nil {
		return err
	}
	if err := e.deductComponents(ctx, pl, rows, float64(qty), true); err != nil {
		return err
	}
	product.Stock = max(product.Stock-qty, 0)
	return nil
}

func (e *Engine) plainStockSale(_ *plan, product *models.Product, qty int) error {
	return deductProductStock(product, qty)
}

// deductComponents malzeme satırlarını gruplayıp her malzeme için bir kez tüketir,
// alt reçete satırlarını bir seviye açar.
func (e *Engine) deductComponents(ctx context.Context, pl *plan, rows []models.RecipeIngredient, multiplier float64, allowNested bool) error {
	refs, nested, err := componentsOf(rows)
	if err != nil {
		return err
	}

	for _, d := range groupIngredients(refs) {
		if err := pl.consume(ctx, d.IngredientID, d.PerUnit*multiplier); err != nil {
			return err
		}
	}

	for _, ref := range nested {
		if !allowNested {
			e.log.Warn("iç içe reçete yalnızca tek seviye destekleniyor, satır atlandı",
				zap.Uint("row_id", ref.RowID),
				zap.Uint("recipe_id", ref.RecipeID),
			)
			continue
		}
		if err := e.expandNested(ctx, pl, ref, multiplier); err != nil {
			return err
		}
	}
	return nil
}

// expandNested alt reçeteden deduct_stock * adet kadar üretilmiş gibi düşer.
func (e *Engine) expandNested(ctx context.Context, pl *plan, ref NestedRecipeRef, orderQuantity float64) error {
	if _, err := pl.repo.recipe(ctx, ref.RecipeID); err != nil {
		return err
	}
	rows, err := pl.repo.recipeRows(ctx, ref.RecipeID)
	if err != nil {
		return err
	}
	recipesToCreate := ref.DeductStock * orderQuantity
	return e.deductComponents(ctx, pl, rows, recipesToCreate, false)
}

// ApplyDeduction malzemenin stok/miktar alanlarını yazar ve bağlı ürüne aynalar.
func (e *Engine) ApplyDeduction(ctx context.Context, ingredientID uint, newStock int, newQuantity float64) error {
	if newStock < 0 || newQuantity < 0 {
		return ErrInvalidQuantity
	}
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pl := newPlan(newRepository(tx, true), nil, "manual_adjustment")
		ing, err := pl.ingredient(ctx, ingredientID)
		if err != nil {
			return err
		}
		if ing.OriginalQuantity > 0 && newQuantity > ing.OriginalQuantity+epsilon {
			return fmt.Errorf("açık birim miktarı birim kapasitesini (%.2f) aşamaz: %w", ing.OriginalQuantity, ErrInvalidQuantity)
		}
		if _, err := pl.setIngredient(ctx, ing, newStock, newQuantity, true); err != nil {
			return err
		}
		return pl.apply(ctx)
	})
}

// Restock malzemeye units kadar kapalı birim ekler. Güncel stok aynı transaction içinde
// (postgres'te satır kilidiyle) okunur; araya giren düşümler ezilmez.
func (e *Engine) Restock(ctx context.Context, ingredientID uint, units int) error {
	if units <= 0 {
		return ErrInvalidQuantity
	}
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pl := newPlan(newRepository(tx, true), nil, "restock")
		ing, err := pl.ingredient(ctx, ingredientID)
		if err != nil {
			return err
		}
		if _, err := pl.setIngredient(ctx, ing, ing.Stock+units, ing.Quantity, true); err != nil {
			return err
		}
		return pl.apply(ctx)
	})
}

// ConsumeIngredient sipariş dışı bir tüketimi (ör. zayiat) açık birimden başlayarak düşer.
// record nil değilse stok yazımıyla aynı transaction içinde çağrılır.
func (e *Engine) ConsumeIngredient(ctx context.Context, ingredientID uint, amount float64, reason string, record func(tx *gorm.DB) error) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pl := newPlan(newRepository(tx, true), nil, reason)
		if err := pl.consume(ctx, ingredientID, amount); err != nil {
			return err
		}
		if err := pl.apply(ctx); err != nil {
			return err
		}
		if record != nil {
			return record(tx)
		}
		return nil
	})
	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		e.metrics.ObserveInsufficient(insufficient.Entity)
	}
	return err
}

func deductProductStock(product *models.Product, qty int) error {
	if product.Stock < qty {
		return &InsufficientStockError{
			Entity:    "product",
			ID:        product.ID,
			Name:      product.Name,
			Available: float64(product.Stock),
			Required:  float64(qty),
		}
	}
	product.Stock -= qty
	return nil
}

func insufficientIngredientUnits(ing *models.Ingredient, qty int) error {
	return &InsufficientStockError{
		Entity:    "ingredient",
		ID:        ing.ID,
		Name:      ing.Name,
		Available: float64(ing.Stock),
		Required:  float64(qty),
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case IsInsufficientStock(err):
		return metrics.ResultInsufficient
	case IsNotFound(err):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
