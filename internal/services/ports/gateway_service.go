package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	domainports "github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// WebhookEvent is the provider-neutral payment confirmation
type WebhookEvent struct {
	TxRef        string
	Amount       *decimal.Decimal
	PaidAt       *time.Time
	ProviderTxID string
}

// PollResult reports what a status pull found and did
type PollResult struct {
	OrderCode     int64
	TxRef         string
	GatewayStatus string
	// Outcome is empty when the gateway does not report the order as paid
	Outcome models.MarkPaidOutcome
	Payment *models.Payment
}

// GatewayService turns gateway confirmations into ledger updates
type GatewayService interface {
	HandleWebhook(ctx context.Context, event WebhookEvent) (*models.MarkPaidResult, error)

	// HandlePayOSWebhook verifies the signature before applying the event.
	// A nil result with nil error means the event was acknowledged and ignored.
	HandlePayOSWebhook(ctx context.Context, payload *domainports.PayOSWebhookPayload) (*models.MarkPaidResult, error)

	PollOrderStatus(ctx context.Context, orderCode int64) (*PollResult, error)
}
