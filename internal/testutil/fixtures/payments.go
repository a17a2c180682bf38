package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
)

// PaymentBuilder provides fluent API for building test payments.
type PaymentBuilder struct {
	payment *models.Payment
}

// NewPayment creates a pending 1,000,000 VND payment with a 10% platform fee.
func NewPayment() *PaymentBuilder {
	now := time.Now().UTC()
	return &PaymentBuilder{
		payment: &models.Payment{
			ID:                  uuid.New().String(),
			BookingID:           "booking-1",
			HotelID:             "hotel-1",
			GrossAmount:         decimal.NewFromInt(1000000),
			ProcessingFeeAmount: decimal.Zero,
			PlatformFeeAmount:   decimal.NewFromInt(100000),
			HotelNetAmount:      decimal.NewFromInt(900000),
			Status:              models.PaymentStatusPending,
			TxRef:               "HB01JNXTESTREF",
			OrderCode:           100001,
			CreatedAt:           now,
			UpdatedAt:           now,
		},
	}
}

func (b *PaymentBuilder) WithTxRef(txRef string) *PaymentBuilder {
	b.payment.TxRef = txRef
	return b
}

func (b *PaymentBuilder) WithBooking(bookingID, hotelID string) *PaymentBuilder {
	b.payment.BookingID = bookingID
	b.payment.HotelID = hotelID
	return b
}

func (b *PaymentBuilder) WithOrderCode(code int64) *PaymentBuilder {
	b.payment.OrderCode = code
	return b
}

// WithAmounts sets the gross and fees and derives the hotel net.
func (b *PaymentBuilder) WithAmounts(gross, processingFee, platformFee decimal.Decimal) *PaymentBuilder {
	b.payment.GrossAmount = gross
	b.payment.ProcessingFeeAmount = processingFee
	b.payment.PlatformFeeAmount = platformFee
	b.payment.HotelNetAmount = gross.Sub(processingFee).Sub(platformFee)
	return b
}

func (b *PaymentBuilder) WithStatus(status models.PaymentStatus) *PaymentBuilder {
	b.payment.Status = status
	return b
}

// Paid marks the payment paid at paidAt.
func (b *PaymentBuilder) Paid(paidAt time.Time) *PaymentBuilder {
	b.payment.Status = models.PaymentStatusPaid
	b.payment.PaidAt = &paidAt
	return b
}

func (b *PaymentBuilder) Build() *models.Payment {
	p := *b.payment
	return &p
}

// PaidRow converts a paid payment into the row shape the revenue repository
// returns.
func PaidRow(p *models.Payment, hotelName, timezone string) models.PaidPaymentRow {
	row := models.PaidPaymentRow{
		PaymentID:           p.ID,
		BookingID:           p.BookingID,
		HotelID:             p.HotelID,
		HotelName:           hotelName,
		HotelTimezone:       timezone,
		GrossAmount:         p.GrossAmount,
		ProcessingFeeAmount: p.ProcessingFeeAmount,
		PlatformFeeAmount:   p.PlatformFeeAmount,
		HotelNetAmount:      p.HotelNetAmount,
	}
	if p.PaidAt != nil {
		row.PaidAt = *p.PaidAt
	}
	return row
}
