package database

import (
	"fmt"
	"strings"
	"time"

	"venue-backend/internal/config"
	applogger "venue-backend/internal/logger"
	"venue-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open postgres bağlantısını açar; migration yapmaz.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, fmt.Errorf("DATABASE_DSN boş olamaz")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: applogger.NewGormLogger(log, gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("veritabanı bağlantısı yok")
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.ProductCategory{},
		&models.Product{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockMovement{},
		&models.WasteEntry{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}

// Init bağlantıyı açar, migration yapar ve global DB'yi ayarlar.
func Init(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	DB = db
	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}
