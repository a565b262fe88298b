package repository

import (
	"time"

	"gorm.io/gorm"

	"lklbridge/internal/models"
)

// AuditRepository persists the callback audit trail.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record writes one audit row for an inbound callback.
func (r *AuditRepository) Record(invoiceID, transID, ip, outcome, detail string) error {
	log := models.CallbackLog{
		InvoiceID: invoiceID,
		TransID:   transID,
		IP:        ip,
		Outcome:   outcome,
		Detail:    detail,
		Time:      time.Now().Format("2006/01/02 15:04:05"),
	}
	return r.db.Create(&log).Error
}

// FindByTransID returns audit rows for a transaction, newest first.
func (r *AuditRepository) FindByTransID(transID string) ([]models.CallbackLog, error) {
	var logs []models.CallbackLog
	err := r.db.Where("trans_id = ?", transID).Order("id DESC").Find(&logs).Error
	return logs, err
}
