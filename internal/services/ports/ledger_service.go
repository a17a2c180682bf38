package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
)

// Confirmation sources, used for logs and metrics
const (
	SourceWebhook      = "webhook"
	SourcePayOSWebhook = "payos_webhook"
	SourcePoll         = "poll"
	SourceManual       = "manual"
)

// RecordPendingPaymentRequest contains parameters for recording a payment
// before the guest pays
type RecordPendingPaymentRequest struct {
	BookingID string
	HotelID   string
	Amount    decimal.Decimal
	TxRef     string // generated when empty
	Note      string
}

// MarkPaidRequest carries one gateway confirmation
type MarkPaidRequest struct {
	TxRef        string
	PaidAmount   *decimal.Decimal // nil keeps the recorded gross
	PaidAt       *time.Time       // nil means now
	ProviderTxID string
	Source       string
}

// CreateBookingPaymentRequest starts a payment for a booking
type CreateBookingPaymentRequest struct {
	BookingID string
	Method    models.PaymentMethod
	ReturnURL string // PayOS only, falls back to configuration
	CancelURL string
}

// LedgerService records guest payments and their confirmations
type LedgerService interface {
	// RecordPendingPayment stores a pending payment with its fee split
	RecordPendingPayment(ctx context.Context, req RecordPendingPaymentRequest) (*models.Payment, error)

	// MarkPaid moves a pending payment to paid. Re-deliveries and unknown
	// txRefs are reported through the result outcome, not as errors.
	MarkPaid(ctx context.Context, req MarkPaidRequest) (*models.MarkPaidResult, error)

	// CreateBookingPayment records a pending payment for the booking's total
	// and returns the QR code or checkout link the guest pays with
	CreateBookingPayment(ctx context.Context, req CreateBookingPaymentRequest) (*models.BookingPaymentInstructions, error)

	GetPayment(ctx context.Context, txRef string) (*models.Payment, error)
}
