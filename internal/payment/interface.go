package payment

import "context"

// CreateOrderRequest carries everything the cashier needs to open an order.
type CreateOrderRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"tradeAmount"`
	Remark    string `json:"remark"`
	NotifyURL string `json:"notify_url"`
	ReturnURL string `json:"return_url"`
}

// CreateOrderResult contains the result of a cashier order creation.
type CreateOrderResult struct {
	InvoiceID  string `json:"invoice_id"`
	PayURL     string `json:"pay_url"`
	PayOrderNo string `json:"pay_order_no,omitempty"`
}

// OrderStatus contains the result of a cashier order status probe.
type OrderStatus struct {
	Paid       bool   `json:"paid"`
	Amount     string `json:"amount,omitempty"`
	PayStatus  string `json:"pay_status,omitempty"`
	OrderState string `json:"order_state,omitempty"`
}

// Gateway defines the interface for cashier gateway implementations.
type Gateway interface {
	// Name returns the gateway identifier.
	Name() string

	// CreateOrder initiates a new cashier order and returns the hosted pay URL.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)

	// QueryOrder probes the status of a previously created order.
	QueryOrder(ctx context.Context, payOrderNo string) (*OrderStatus, error)
}
