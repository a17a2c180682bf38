package ports

import (
	"context"
	"io"
	"time"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
)

// DailyRevenueQuery selects business days in [DateFrom, DateTo]. A nil
// HotelID covers every hotel.
type DailyRevenueQuery struct {
	HotelID  *string
	DateFrom time.Time
	DateTo   time.Time
}

// RevenueService aggregates paid payments per hotel and business day
type RevenueService interface {
	// GetDailyRevenue returns one row per (hotel, business day) with at least
	// one paid payment, newest day first
	GetDailyRevenue(ctx context.Context, q DailyRevenueQuery) ([]models.DailyHotelRevenue, error)

	// EarliestLatestPaidDates reports the paid_at span of a hotel's payments
	EarliestLatestPaidDates(ctx context.Context, hotelID string) (*models.PaidDateRange, error)
}

// ReportService renders revenue and payouts as spreadsheets
type ReportService interface {
	WriteDailyRevenueXLSX(ctx context.Context, q DailyRevenueQuery, w io.Writer) error
}
