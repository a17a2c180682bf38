package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
)

// CreatePayoutRequest contains parameters for creating or previewing a payout
type CreatePayoutRequest struct {
	HotelID        string
	CoverDate      time.Time
	TotalNetAmount *decimal.Decimal // nil reads the day's revenue
}

// ContractResolver picks the single commission contract for a hotel and date
type ContractResolver interface {
	ResolveContract(ctx context.Context, hotelID string, date time.Time) (*models.Contract, error)
}

// CommissionCalculator derives the payout breakdown from net revenue
type CommissionCalculator interface {
	Calculate(hotelNetRevenue decimal.Decimal, contract *models.Contract) (*models.CommissionBreakdown, error)
}

// PayoutService creates and inspects hotel payouts
type PayoutService interface {
	// CreatePayout computes and stores the payout for one hotel and business
	// day, replacing any existing payout for that pair
	CreatePayout(ctx context.Context, req CreatePayoutRequest) (*models.Payout, error)

	// PreviewPayout runs the same computation without writing
	PreviewPayout(ctx context.Context, req CreatePayoutRequest) (*models.PayoutPreview, error)

	// ProcessDailyPayouts creates payouts for every hotel with positive net
	// revenue on targetDate. Per-hotel failures are reported in the summary.
	ProcessDailyPayouts(ctx context.Context, targetDate time.Time) (*models.PayoutBatchSummary, error)

	ListPayouts(ctx context.Context, hotelID string, from, to time.Time) ([]*models.Payout, error)

	GetPayout(ctx context.Context, id string) (*models.Payout, error)
}
