package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a guest payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is one attempted or completed transfer from a guest for a booking.
// Rows are never hard-deleted.
type Payment struct {
	ID                  string
	BookingID           string
	HotelID             string
	GrossAmount         decimal.Decimal
	ProcessingFeeAmount decimal.Decimal
	PlatformFeeAmount   decimal.Decimal
	HotelNetAmount      decimal.Decimal // Gross − ProcessingFee − PlatformFee
	Status              PaymentStatus
	TxRef               string // Gateway correlation key, unique
	OrderCode           int64  // PayOS order code, unique
	ProviderTxID        string
	PaidAt              *time.Time
	Note                string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsPaid returns true once the gateway has confirmed the payment
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// IsPending returns true while the payment awaits confirmation
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// MarkPaidOutcome tells the caller what MarkPaid actually did
type MarkPaidOutcome string

const (
	MarkPaidApplied        MarkPaidOutcome = "applied"         // pending → paid transition happened now
	MarkPaidAlreadyPaid    MarkPaidOutcome = "already_paid"    // idempotent re-delivery, nothing changed
	MarkPaidNoLocalPayment MarkPaidOutcome = "no_local_payment" // txRef unknown locally
)

// MarkPaidResult is returned by the ledger for every confirmation attempt.
// Payment is nil when Outcome is MarkPaidNoLocalPayment.
type MarkPaidResult struct {
	Payment *Payment
	Outcome MarkPaidOutcome
}
