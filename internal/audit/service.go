package audit

import (
	"encoding/json"
	"fmt"

	"venue-backend/internal/database"
	"venue-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog global bağlantıya yazar.
func WriteLog(opts LogOptions) error {
	return WriteLogTx(database.DB, opts)
}

// WriteLogTx verilen bağlantıya (transaction olabilir) yazar.
func WriteLogTx(db *gorm.DB, opts LogOptions) error {
	if db == nil {
		return fmt.Errorf("audit log kaydedilemedi: veritabanı bağlantısı yok")
	}

	// boş string yerine "null" JSON
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	if opts.UserName == "" && opts.UserID > 0 {
		var user models.User
		if err := db.Select("name").First(&user, opts.UserID).Error; err == nil {
			opts.UserName = user.Name
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}
