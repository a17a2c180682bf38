package ports

import (
	"context"
	"time"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
)

// PaymentRepository persists guest payments. Payments are never deleted.
type PaymentRepository interface {
	// Create inserts a pending payment and fills ID, OrderCode and timestamps.
	// Returns domain.ErrTxRefConflict when the txRef is taken.
	Create(ctx context.Context, db DBTX, payment *models.Payment) error

	// GetByTxRef returns domain.ErrPaymentNotFound when no row matches
	GetByTxRef(ctx context.Context, db DBTX, txRef string) (*models.Payment, error)

	// LockByTxRef is GetByTxRef with a row lock held until db commits
	LockByTxRef(ctx context.Context, db DBTX, txRef string) (*models.Payment, error)

	// GetByOrderCode returns domain.ErrPaymentNotFound when no row matches
	GetByOrderCode(ctx context.Context, db DBTX, orderCode int64) (*models.Payment, error)

	// HasPaidForBooking reports whether the booking already has a paid payment
	HasPaidForBooking(ctx context.Context, db DBTX, bookingID string) (bool, error)

	// MarkPaidIfPending moves a pending payment to paid in one conditional
	// update. It returns (nil, nil) when the row was not pending. A non-nil
	// split replaces the stored amounts. Returns
	// domain.ErrDuplicateBookingPayment when the booking already has another
	// paid payment.
	MarkPaidIfPending(ctx context.Context, db DBTX, params MarkPaidParams) (*models.Payment, error)
}

// MarkPaidParams carries the confirmation data for a conditional paid update
type MarkPaidParams struct {
	TxRef        string
	PaidAt       time.Time
	ProviderTxID string
	Split        *money.FeeSplit
}

// BookingRepository reads and flags bookings owned by the booking module
type BookingRepository interface {
	// GetByID returns domain.ErrBookingNotFound when no row matches
	GetByID(ctx context.Context, db DBTX, bookingID string) (*models.Booking, error)

	SetPaymentStatus(ctx context.Context, db DBTX, bookingID string, status models.BookingPaymentStatus) error
}

// RevenueRepository reads paid payments for aggregation
type RevenueRepository interface {
	// ListPaidPayments returns paid payments with paid_at in [fromUTC, toUTC).
	// A nil hotelID means every hotel.
	ListPaidPayments(ctx context.Context, db DBTX, hotelID *string, fromUTC, toUTC time.Time) ([]models.PaidPaymentRow, error)

	PaidDateRange(ctx context.Context, db DBTX, hotelID string) (*models.PaidDateRange, error)
}

// ContractRepository reads commission contracts
type ContractRepository interface {
	// ListCandidates returns contracts for hotelID whose status is in statuses
	// and whose date range covers date. Ordering is left to the caller.
	ListCandidates(ctx context.Context, db DBTX, hotelID string, date time.Time, statuses []models.ContractStatus) ([]*models.Contract, error)
}

// BankAccountRepository reads hotel payout destinations
type BankAccountRepository interface {
	// GetDefaultActive returns domain.ErrNoBankAccount when the hotel has no
	// active default account
	GetDefaultActive(ctx context.Context, db DBTX, hotelID string) (*models.BankAccount, error)
}

// PayoutRepository persists payouts
type PayoutRepository interface {
	// LockHotelDate takes a transaction-scoped advisory lock for the pair.
	// db must be a transaction.
	LockHotelDate(ctx context.Context, db DBTX, hotelID string, coverDate time.Time) error

	// DeleteByHotelDate removes existing payouts for the pair and returns their ids
	DeleteByHotelDate(ctx context.Context, db DBTX, hotelID string, coverDate time.Time) ([]string, error)

	// Create inserts the payout and fills ID and CreatedAt
	Create(ctx context.Context, db DBTX, payout *models.Payout) error

	// GetByID returns domain.ErrPayoutNotFound when no row matches
	GetByID(ctx context.Context, db DBTX, id string) (*models.Payout, error)

	// GetByHotelDate returns domain.ErrPayoutNotFound when no row matches
	GetByHotelDate(ctx context.Context, db DBTX, hotelID string, coverDate time.Time) (*models.Payout, error)

	// ListByHotel returns payouts with cover_date in [from, to], newest first
	ListByHotel(ctx context.Context, db DBTX, hotelID string, from, to time.Time) ([]*models.Payout, error)
}
