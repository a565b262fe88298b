package notifier

import (
	"fmt"

	"go.uber.org/zap"
	telebot "gopkg.in/telebot.v3"

	"lklbridge/internal/fulfillment"
)

// TelegramNotifier posts a payment report to the operator channel for every
// applied payment. Optional: a nil notifier disables reporting.
type TelegramNotifier struct {
	bot    *telebot.Bot
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier builds the notifier, or returns nil when no token or
// chat is configured.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *TelegramNotifier) PaymentReceived(rec fulfillment.Record) {
	text := fmt.Sprintf(
		"💵 收款成功\n订单号: %s\n交易号: %s\n金额: %s %s\n支付方式: %s\n时间: %s",
		rec.InvoiceID, rec.TransID, rec.Amount, rec.Currency, rec.Payment,
		rec.PaidTime.Format("2006-01-02 15:04:05"),
	)
	if _, err := n.bot.Send(telebot.ChatID(n.chatID), text); err != nil {
		n.logger.Warn("payment report failed", zap.Error(err))
	}
}
