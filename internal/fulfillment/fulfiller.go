// Package fulfillment applies an authenticated, deduplicated payment to the
// order it belongs to. The notify handler only ever sees the Fulfiller
// interface, so the shop-side logic stays swappable and testable.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lklbridge/internal/repository"
)

// Record is the normalized payment handed to the collaborator. Ownership
// transfers on call.
type Record struct {
	InvoiceID string
	TransID   string
	Currency  string
	Payment   string
	Amount    string
	PaidTime  time.Time
}

// Fulfiller is the order collaborator invoked once per accepted callback.
type Fulfiller interface {
	OrderPaid(ctx context.Context, rec Record) error
}

// Notifier reports an applied payment to the operator channel. Best effort.
type Notifier interface {
	PaymentReceived(rec Record)
}

// OrderFulfiller marks the matching payment order paid and reports it.
type OrderFulfiller struct {
	orders   *repository.OrderRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewOrderFulfiller(orders *repository.OrderRepository, notifier Notifier, logger *zap.Logger) *OrderFulfiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderFulfiller{orders: orders, notifier: notifier, logger: logger}
}

func (f *OrderFulfiller) OrderPaid(ctx context.Context, rec Record) error {
	if err := f.orders.MarkPaid(rec.InvoiceID, rec.TransID, rec.PaidTime.Unix()); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	f.logger.Info("order fulfilled",
		zap.String("invoice_id", rec.InvoiceID),
		zap.String("trans_id", rec.TransID),
		zap.String("amount", rec.Amount),
		zap.String("currency", rec.Currency),
	)

	if f.notifier != nil {
		f.notifier.PaymentReceived(rec)
	}
	return nil
}
