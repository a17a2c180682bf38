package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// QRGenerator builds a bank-transfer QR code that embeds the txRef in the
// transfer description, so the incoming transfer can be matched later.
type QRGenerator interface {
	GenerateQR(ctx context.Context, req QRRequest) (*QRResult, error)
}

// QRRequest describes the transfer the QR code should encode
type QRRequest struct {
	TxRef       string
	Amount      decimal.Decimal
	Description string
}

// QRResult holds the generated QR artifacts
type QRResult struct {
	QRCode  string // EMV payload
	QRImage string // data URL
}

// PayOSClient is the hosted-checkout gateway
type PayOSClient interface {
	// CreatePaymentLink registers an order and returns its checkout URL
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error)

	// GetPaymentStatus fetches the current gateway view of an order
	GetPaymentStatus(ctx context.Context, orderCode int64) (*GatewayOrderStatus, error)

	// VerifyWebhook checks the webhook signature and returns the payload data.
	// Returns domain.ErrGatewaySignatureInvalid on mismatch.
	VerifyWebhook(ctx context.Context, payload *PayOSWebhookPayload) (*PayOSWebhookData, error)
}

// PaymentLinkRequest creates a hosted checkout for one order
type PaymentLinkRequest struct {
	OrderCode   int64
	Amount      decimal.Decimal
	Description string
	ReturnURL   string
	CancelURL   string
	ExpiresAt   *time.Time
}

// PaymentLink is the gateway's answer to CreatePaymentLink
type PaymentLink struct {
	PaymentLinkID string
	CheckoutURL   string
	QRCode        string
}

// Gateway order statuses reported by PayOS
const (
	GatewayOrderPending   = "PENDING"
	GatewayOrderPaid      = "PAID"
	GatewayOrderCancelled = "CANCELLED"
	GatewayOrderExpired   = "EXPIRED"
)

// GatewayOrderStatus is the gateway's view of one order
type GatewayOrderStatus struct {
	OrderCode  int64
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	Status     string
	Reference  string
	PaidAt     *time.Time
}

// PayOSWebhookPayload is the signed envelope PayOS posts to the webhook URL.
// Data stays raw: the signature covers whatever fields PayOS sent, so it is
// decoded into PayOSWebhookData only after verification.
type PayOSWebhookPayload struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// PayOSWebhookData is the signed part of a PayOS webhook
type PayOSWebhookData struct {
	OrderCode              int64  `json:"orderCode"`
	Amount                 int64  `json:"amount"`
	Description            string `json:"description"`
	AccountNumber          string `json:"accountNumber"`
	Reference              string `json:"reference"`
	TransactionDateTime    string `json:"transactionDateTime"`
	Currency               string `json:"currency"`
	PaymentLinkID          string `json:"paymentLinkId"`
	Code                   string `json:"code"`
	Desc                   string `json:"desc"`
	CounterAccountBankID   string `json:"counterAccountBankId"`
	CounterAccountBankName string `json:"counterAccountBankName"`
	CounterAccountName     string `json:"counterAccountName"`
	CounterAccountNumber   string `json:"counterAccountNumber"`
	VirtualAccountName     string `json:"virtualAccountName"`
	VirtualAccountNumber   string `json:"virtualAccountNumber"`
}

// SecretStore reads credentials from the configured secret backend
type SecretStore interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
}

// Secret is a retrieved secret value with its backend version
type Secret struct {
	Value     string
	Version   string
	Metadata  map[string]string
	CreatedAt string
}

// Locker hands out distributed locks for work that must not overlap across
// instances
type Locker interface {
	// Obtain returns domain.ErrBatchInProgress when the key is already held
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// payOSZone is the offset PayOS timestamps are written in; they carry none
var payOSZone = time.FixedZone("ICT", 7*60*60)

// ParsePayOSTime parses a PayOS transaction timestamp
func ParsePayOSTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, payOSZone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
