package models

// PaymentOrder maps to the `payment_orders` table. One row per cashier order
// created through the bridge; the notify handler flips it to paid.
type PaymentOrder struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvoiceID  string `gorm:"column:invoice_id;size:191;index" json:"invoice_id"`
	OrderRef   string `gorm:"column:order_ref;size:64;uniqueIndex" json:"order_ref"`
	PayOrderNo string `gorm:"column:pay_order_no;size:191;index" json:"pay_order_no"`
	Amount     string `gorm:"column:amount;size:64" json:"amount"`
	Currency   string `gorm:"column:currency;size:8" json:"currency"`
	Remark     string `gorm:"column:remark;size:500" json:"remark"`
	PayURL     string `gorm:"column:pay_url;type:text" json:"pay_url"`
	Status     string `gorm:"column:status;size:32" json:"status"`
	CreatedAt  int64  `gorm:"column:created_at" json:"created_at"`
	PaidAt     int64  `gorm:"column:paid_at" json:"paid_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// Payment order statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)
