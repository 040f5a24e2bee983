// Package notify delivers store credit notifications to customers.
package notify

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/rs/zerolog"
)

// CreditNotification carries everything the customer needs to use an issued
// store credit code.
type CreditNotification struct {
	Email     string
	Code      string
	Amount    model.Cents
	ExpiresAt *time.Time
}

// Notifier sends credit notifications. It is invoked after the issuing
// transaction commits; failures are logged by the caller and never roll back
// the settlement.
type Notifier interface {
	SendCreditIssued(ctx context.Context, n CreditNotification) error
}

// NopNotifier logs the notification instead of delivering it. It is wired
// when SMTP is not configured.
type NopNotifier struct {
	logger zerolog.Logger
}

// NewNopNotifier creates a logging-only notifier.
func NewNopNotifier(logger zerolog.Logger) *NopNotifier {
	return &NopNotifier{
		logger: logger.With().Str("notifier", "nop").Logger(),
	}
}

func (n *NopNotifier) SendCreditIssued(_ context.Context, cn CreditNotification) error {
	n.logger.Info().
		Str("customer_email", cn.Email).
		Str("code", cn.Code).
		Str("amount", cn.Amount.String()).
		Msg("store credit issued, notification delivery disabled")
	return nil
}
