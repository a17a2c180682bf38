package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// BookingRepository implements ports.BookingRepository over the booking
// module's table
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db ports.DBPort) *BookingRepository {
	return &BookingRepository{pool: db.GetDB()}
}

// GetByID retrieves the payment-relevant view of a booking
func (r *BookingRepository) GetByID(ctx context.Context, db ports.DBTX, bookingID string) (*models.Booking, error) {
	var (
		b      models.Booking
		total  pgtype.Numeric
		status string
	)
	err := executor(db, r.pool).QueryRow(ctx,
		`SELECT id, hotel_id, total_price, payment_status FROM bookings WHERE id = $1`,
		bookingID,
	).Scan(&b.ID, &b.HotelID, &total, &status)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBookingNotFound.WithDetail("booking_id", bookingID)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if b.TotalPrice, err = pgNumericToDecimal(total); err != nil {
		return nil, fmt.Errorf("total_price: %w", err)
	}
	b.PaymentStatus = models.BookingPaymentStatus(status)
	return &b, nil
}

// SetPaymentStatus updates the display flag on the booking
func (r *BookingRepository) SetPaymentStatus(ctx context.Context, db ports.DBTX, bookingID string, status models.BookingPaymentStatus) error {
	tag, err := executor(db, r.pool).Exec(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, string(status),
	)
	if err != nil {
		return fmt.Errorf("set booking payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound.WithDetail("booking_id", bookingID)
	}
	return nil
}
