// Package dbtest testler için migrate edilmiş in-memory sqlite veritabanı sağlar.
package dbtest

import (
	"testing"
	"time"

	"venue-backend/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New her çağrıda ayrı bir in-memory veritabanı açar. Tek bağlantı kullanılır; böylece
// transaction dışındaki sorgular da aynı veritabanını görür.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite database: %v", err)
	}
	return db
}

// Use global database.DB'yi test süresince verilen bağlantıyla değiştirir.
func Use(t testing.TB, db *gorm.DB) {
	t.Helper()
	original := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = original })
}
