package repository

import (
	"errors"

	"gorm.io/gorm"

	"lklbridge/internal/models"
)

// SettingRepository handles the gateway_settings key-value table.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// DB returns the underlying gorm.DB instance.
func (r *SettingRepository) DB() *gorm.DB {
	return r.db
}

// Get returns a setting value, or "" when the row is absent.
func (r *SettingRepository) Get(name string) (string, error) {
	var s models.GatewaySetting
	if err := r.db.Where("name = ?", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// GetOr returns a setting value, falling back to def when unset.
func (r *SettingRepository) GetOr(name, def string) string {
	v, err := r.Get(name)
	if err != nil || v == "" {
		return def
	}
	return v
}

// Set inserts or updates a setting.
func (r *SettingRepository) Set(name, value string) error {
	return r.db.Save(&models.GatewaySetting{Name: name, Value: value}).Error
}

// GetAll returns every setting row.
func (r *SettingRepository) GetAll() ([]models.GatewaySetting, error) {
	var settings []models.GatewaySetting
	err := r.db.Find(&settings).Error
	return settings, err
}
