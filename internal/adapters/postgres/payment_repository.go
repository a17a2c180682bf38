package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

const paymentColumns = `
	id::text, booking_id, hotel_id,
	gross_amount, processing_fee_amount, platform_fee_amount, hotel_net_amount,
	status, tx_ref, order_code, provider_tx_id, paid_at, note,
	created_at, updated_at`

const (
	uqPaymentsTxRef       = "uq_payments_tx_ref"
	uqPaymentsBookingPaid = "uq_payments_booking_paid"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PaymentRepository implements ports.PaymentRepository
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db ports.DBPort) *PaymentRepository {
	return &PaymentRepository{pool: db.GetDB()}
}

// Create inserts a pending payment. order_code comes from its sequence.
func (r *PaymentRepository) Create(ctx context.Context, db ports.DBTX, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	gross, err := decimalToNumeric(payment.GrossAmount)
	if err != nil {
		return err
	}
	processing, err := decimalToNumeric(payment.ProcessingFeeAmount)
	if err != nil {
		return err
	}
	platform, err := decimalToNumeric(payment.PlatformFeeAmount)
	if err != nil {
		return err
	}
	net, err := decimalToNumeric(payment.HotelNetAmount)
	if err != nil {
		return err
	}

	row := executor(db, r.pool).QueryRow(ctx, `
		INSERT INTO payments (
			id, booking_id, hotel_id,
			gross_amount, processing_fee_amount, platform_fee_amount, hotel_net_amount,
			status, tx_ref, note
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_code, created_at, updated_at`,
		payment.ID, payment.BookingID, payment.HotelID,
		gross, processing, platform, net,
		string(payment.Status), payment.TxRef, nullText(payment.Note),
	)

	if err := row.Scan(&payment.OrderCode, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
		if isUniqueViolation(err, uqPaymentsTxRef) {
			return domain.ErrTxRefConflict.WithDetail("tx_ref", payment.TxRef)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetByTxRef retrieves a payment by its gateway correlation key
func (r *PaymentRepository) GetByTxRef(ctx context.Context, db ports.DBTX, txRef string) (*models.Payment, error) {
	row := executor(db, r.pool).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE tx_ref = $1`, txRef)
	return r.scanOne(row, "tx_ref", txRef)
}

// LockByTxRef retrieves a payment and holds its row lock for the rest of db's transaction
func (r *PaymentRepository) LockByTxRef(ctx context.Context, db ports.DBTX, txRef string) (*models.Payment, error) {
	row := executor(db, r.pool).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE tx_ref = $1 FOR UPDATE`, txRef)
	return r.scanOne(row, "tx_ref", txRef)
}

// GetByOrderCode retrieves a payment by its PayOS order code
func (r *PaymentRepository) GetByOrderCode(ctx context.Context, db ports.DBTX, orderCode int64) (*models.Payment, error) {
	row := executor(db, r.pool).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_code = $1`, orderCode)
	return r.scanOne(row, "order_code", orderCode)
}

// HasPaidForBooking reports whether a paid payment exists for the booking
func (r *PaymentRepository) HasPaidForBooking(ctx context.Context, db ports.DBTX, bookingID string) (bool, error) {
	var exists bool
	err := executor(db, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = 'paid')`,
		bookingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check paid payment for booking: %w", err)
	}
	return exists, nil
}

// MarkPaidIfPending is the single conditional update behind the
// pending → paid transition
func (r *PaymentRepository) MarkPaidIfPending(ctx context.Context, db ports.DBTX, params ports.MarkPaidParams) (*models.Payment, error) {
	var gross, processing, platform, net pgtype.Numeric
	if params.Split != nil {
		var err error
		if gross, err = decimalToNumeric(params.Split.Gross); err != nil {
			return nil, err
		}
		if processing, err = decimalToNumeric(params.Split.ProcessingFee); err != nil {
			return nil, err
		}
		if platform, err = decimalToNumeric(params.Split.PlatformFee); err != nil {
			return nil, err
		}
		if net, err = decimalToNumeric(params.Split.HotelNet); err != nil {
			return nil, err
		}
	}

	row := executor(db, r.pool).QueryRow(ctx, `
		UPDATE payments SET
			status                = 'paid',
			paid_at               = $2,
			provider_tx_id        = COALESCE($3, provider_tx_id),
			gross_amount          = COALESCE($4::numeric, gross_amount),
			processing_fee_amount = COALESCE($5::numeric, processing_fee_amount),
			platform_fee_amount   = COALESCE($6::numeric, platform_fee_amount),
			hotel_net_amount      = COALESCE($7::numeric, hotel_net_amount),
			updated_at            = NOW()
		WHERE tx_ref = $1 AND status = 'pending'
		RETURNING `+paymentColumns,
		params.TxRef, params.PaidAt, nullText(params.ProviderTxID),
		gross, processing, platform, net,
	)

	payment, err := scanPayment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		if isUniqueViolation(err, uqPaymentsBookingPaid) {
			return nil, domain.ErrDuplicateBookingPayment.WithDetail("tx_ref", params.TxRef)
		}
		return nil, fmt.Errorf("mark payment paid: %w", err)
	}
	return payment, nil
}

func (r *PaymentRepository) scanOne(row rowScanner, key string, value interface{}) (*models.Payment, error) {
	payment, err := scanPayment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPaymentNotFound.WithDetail(key, value)
		}
		return nil, fmt.Errorf("get payment by %s: %w", key, err)
	}
	return payment, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p                                models.Payment
		status                           string
		gross, processing, platform, net pgtype.Numeric
		providerTxID, note               pgtype.Text
		paidAt                           pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID, &p.BookingID, &p.HotelID,
		&gross, &processing, &platform, &net,
		&status, &p.TxRef, &p.OrderCode, &providerTxID, &paidAt, &note,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.GrossAmount, err = pgNumericToDecimal(gross); err != nil {
		return nil, fmt.Errorf("gross_amount: %w", err)
	}
	if p.ProcessingFeeAmount, err = pgNumericToDecimal(processing); err != nil {
		return nil, fmt.Errorf("processing_fee_amount: %w", err)
	}
	if p.PlatformFeeAmount, err = pgNumericToDecimal(platform); err != nil {
		return nil, fmt.Errorf("platform_fee_amount: %w", err)
	}
	if p.HotelNetAmount, err = pgNumericToDecimal(net); err != nil {
		return nil, fmt.Errorf("hotel_net_amount: %w", err)
	}

	p.Status = models.PaymentStatus(status)
	p.ProviderTxID = textValue(providerTxID)
	p.Note = textValue(note)
	p.PaidAt = timePtr(paidAt)
	return &p, nil
}
