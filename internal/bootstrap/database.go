package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"lklbridge/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.PaymentOrder{},
		&models.ProcessedTransaction{},
		&models.GatewaySetting{},
		&models.CallbackLog{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GatewaySetting{}).
			Where("name = ?", models.SettingCurrency).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&models.GatewaySetting{
				Name:  models.SettingCurrency,
				Value: "CNY",
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
