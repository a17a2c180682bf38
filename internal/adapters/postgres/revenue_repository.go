package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// RevenueRepository implements ports.RevenueRepository. It only reads raw
// paid payments; grouping by business date happens in the revenue service,
// where each hotel's timezone is known.
type RevenueRepository struct {
	pool *pgxpool.Pool
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(db ports.DBPort) *RevenueRepository {
	return &RevenueRepository{pool: db.GetDB()}
}

// ListPaidPayments returns paid payments with paid_at in [fromUTC, toUTC)
func (r *RevenueRepository) ListPaidPayments(ctx context.Context, db ports.DBTX, hotelID *string, fromUTC, toUTC time.Time) ([]models.PaidPaymentRow, error) {
	hotelFilter := pgtype.Text{}
	if hotelID != nil {
		hotelFilter = pgtype.Text{String: *hotelID, Valid: true}
	}

	rows, err := executor(db, r.pool).Query(ctx, `
		SELECT p.id::text, p.booking_id, p.hotel_id,
		       COALESCE(h.name, ''), COALESCE(h.timezone, ''),
		       p.gross_amount, p.processing_fee_amount, p.platform_fee_amount, p.hotel_net_amount,
		       p.paid_at
		FROM payments p
		LEFT JOIN hotels h ON h.id = p.hotel_id
		WHERE p.status = 'paid'
		  AND p.paid_at >= $1
		  AND p.paid_at < $2
		  AND ($3::text IS NULL OR p.hotel_id = $3::text)
		ORDER BY p.paid_at, p.id`,
		fromUTC, toUTC, hotelFilter,
	)
	if err != nil {
		return nil, fmt.Errorf("list paid payments: %w", err)
	}
	defer rows.Close()

	var result []models.PaidPaymentRow
	for rows.Next() {
		var (
			row                              models.PaidPaymentRow
			gross, processing, platform, net pgtype.Numeric
		)
		if err := rows.Scan(
			&row.PaymentID, &row.BookingID, &row.HotelID,
			&row.HotelName, &row.HotelTimezone,
			&gross, &processing, &platform, &net,
			&row.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("scan paid payment: %w", err)
		}
		if row.GrossAmount, err = pgNumericToDecimal(gross); err != nil {
			return nil, fmt.Errorf("gross_amount of payment %s: %w", row.PaymentID, err)
		}
		if row.ProcessingFeeAmount, err = pgNumericToDecimal(processing); err != nil {
			return nil, fmt.Errorf("processing_fee_amount of payment %s: %w", row.PaymentID, err)
		}
		if row.PlatformFeeAmount, err = pgNumericToDecimal(platform); err != nil {
			return nil, fmt.Errorf("platform_fee_amount of payment %s: %w", row.PaymentID, err)
		}
		if row.HotelNetAmount, err = pgNumericToDecimal(net); err != nil {
			return nil, fmt.Errorf("hotel_net_amount of payment %s: %w", row.PaymentID, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paid payments: %w", err)
	}
	return result, nil
}

// PaidDateRange reports the earliest and latest paid_at for a hotel
func (r *RevenueRepository) PaidDateRange(ctx context.Context, db ports.DBTX, hotelID string) (*models.PaidDateRange, error) {
	var (
		earliest, latest pgtype.Timestamptz
		count            int64
	)
	err := executor(db, r.pool).QueryRow(ctx, `
		SELECT MIN(paid_at), MAX(paid_at), COUNT(*)
		FROM payments
		WHERE hotel_id = $1 AND status = 'paid'`,
		hotelID,
	).Scan(&earliest, &latest, &count)
	if err != nil {
		return nil, fmt.Errorf("paid date range: %w", err)
	}

	return &models.PaidDateRange{
		HotelID:  hotelID,
		Earliest: timePtr(earliest),
		Latest:   timePtr(latest),
		Count:    int(count),
	}, nil
}
