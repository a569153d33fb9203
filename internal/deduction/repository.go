package deduction

import (
	"context"
	"errors"

	"venue-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository düşüm motorunun okuduğu/yazdığı satırlara gorm üzerinden erişir.
type repository struct {
	db          *gorm.DB
	lockForRead bool // transaction içinde SELECT ... FOR UPDATE
}

func newRepository(db *gorm.DB, lockForRead bool) *repository {
	// sqlite satır kilidi desteklemiyor
	if db.Dialector.Name() != "postgres" {
		lockForRead = false
	}
	return &repository{db: db, lockForRead: lockForRead}
}

func (r *repository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.lockForRead {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *repository) product(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.query(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "ürün", ID: id}
		}
		return nil, err
	}
	return &p, nil
}

// findProduct bağlantı takibi için: kayıt yoksa nil, nil döner.
func (r *repository) findProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := r.product(ctx, id)
	if IsNotFound(err) {
		return nil, nil
	}
	return p, err
}

func (r *repository) ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.query(ctx).First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "malzeme", ID: id}
		}
		return nil, err
	}
	return &ing, nil
}

// ingredientByProduct product_id'si verilen ürün olan malzemeyi döner; yoksa nil, nil.
func (r *repository) ingredientByProduct(ctx context.Context, productID uint) (*models.Ingredient, error) {
	var ings []models.Ingredient
	if err := r.query(ctx).Where("product_id = ?", productID).Order("id asc").Limit(1).Find(&ings).Error; err != nil {
		return nil, err
	}
	if len(ings) == 0 {
		return nil, nil
	}
	return &ings[0], nil
}

func (r *repository) recipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var rec models.Recipe
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "reçete", ID: id}
		}
		return nil, err
	}
	return &rec, nil
}

// recipeRows bir paylaşılan reçetenin satırları; ürüne ait satırlar hariç.
func (r *repository) recipeRows(ctx context.Context, recipeID uint) ([]models.RecipeIngredient, error) {
	var rows []models.RecipeIngredient
	err := r.db.WithContext(ctx).
		Where("recipe_id = ? AND product_id IS NULL", recipeID).
		Order("id asc").
		Find(&rows).Error
	return rows, err
}

// productRows ürünün kendi malzeme listesi.
func (r *repository) productRows(ctx context.Context, productID uint) ([]models.RecipeIngredient, error) {
	var rows []models.RecipeIngredient
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&rows).Error
	return rows, err
}

func (r *repository) updateIngredient(ctx context.Context, id uint, stock int, quantity float64) error {
	return r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":    stock,
		"quantity": quantity,
	}).Error
}

func (r *repository) updateProduct(ctx context.Context, id uint, stock int, quantity float64) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":    stock,
		"quantity": quantity,
	}).Error
}

func (r *repository) recordMovements(ctx context.Context, movements []models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}
