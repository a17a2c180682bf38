package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyHotelRevenue is the derived per-hotel, per-business-day aggregate of
// paid payments. It is computed on demand and never stored.
type DailyHotelRevenue struct {
	HotelID          string
	HotelName        string
	BizDate          time.Time // UTC midnight of the local business date
	BookingsCount    int
	GrossSum         decimal.Decimal
	ProcessingFeeSum decimal.Decimal
	PlatformFeeSum   decimal.Decimal
	HotelNetSum      decimal.Decimal
}

// PaidPaymentRow is one paid payment as read for aggregation, joined with
// the hotel attributes needed to place it on a business date.
type PaidPaymentRow struct {
	PaymentID           string
	BookingID           string
	HotelID             string
	HotelName           string
	HotelTimezone       string // IANA name, empty when the hotel has none configured
	GrossAmount         decimal.Decimal
	ProcessingFeeAmount decimal.Decimal
	PlatformFeeAmount   decimal.Decimal
	HotelNetAmount      decimal.Decimal
	PaidAt              time.Time
}

// PaidDateRange reports the first and last paid_at seen for a hotel
type PaidDateRange struct {
	HotelID  string
	Earliest *time.Time
	Latest   *time.Time
	Count    int
}
