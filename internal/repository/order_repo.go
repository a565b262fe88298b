package repository

import (
	"time"

	"gorm.io/gorm"

	"lklbridge/internal/models"
)

// OrderRepository handles payment order database operations.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new pending payment order.
func (r *OrderRepository) Create(order *models.PaymentOrder) error {
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.CreatedAt == 0 {
		order.CreatedAt = time.Now().Unix()
	}
	return r.db.Create(order).Error
}

// FindByInvoiceID returns the most recent order for an invoice.
func (r *OrderRepository) FindByInvoiceID(invoiceID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.Where("invoice_id = ?", invoiceID).Order("id DESC").First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderRef returns an order by its bridge-assigned reference.
func (r *OrderRepository) FindByOrderRef(ref string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.Where("order_ref = ?", ref).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips an order to paid and records the processor transaction id.
func (r *OrderRepository) MarkPaid(invoiceID, payOrderNo string, paidAt int64) error {
	return r.db.Model(&models.PaymentOrder{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusPaid,
			"pay_order_no": payOrderNo,
			"paid_at":      paidAt,
		}).Error
}

// FindAll returns orders with pagination and search.
func (r *OrderRepository) FindAll(limit, page int, query string) ([]models.PaymentOrder, int64, error) {
	var orders []models.PaymentOrder
	var total int64

	db := r.db.Model(&models.PaymentOrder{})
	if query != "" {
		search := "%" + query + "%"
		db = db.Where("invoice_id LIKE ? OR pay_order_no LIKE ?", search, search)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if err := db.Limit(limit).Offset(offset).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
