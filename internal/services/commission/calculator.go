package commission

import (
	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
)

var (
	// LegacyDefaultRate replaces rates stored in the old absolute-VND format
	LegacyDefaultRate = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// Calculator implements svcports.CommissionCalculator
type Calculator struct {
	logger ports.Logger
}

// NewCalculator creates a new commission calculator
func NewCalculator(logger ports.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Calculate builds the payout breakdown for a day's net revenue.
//
// The hotel net revenue has already had the platform's take removed when
// the payment was recorded, so the payout equals the net revenue. Gross and
// commission are reconstructed from the contract rate for display only.
func (c *Calculator) Calculate(hotelNetRevenue decimal.Decimal, contract *models.Contract) (*models.CommissionBreakdown, error) {
	if contract == nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "contract", "contract is required")
	}
	if hotelNetRevenue.IsNegative() {
		return nil, domain.ErrInvalidAmount.
			WithDetail("field", "hotel_net_revenue").
			WithDetail("amount", hotelNetRevenue.String())
	}

	rate := contract.CommissionRate
	legacy := false
	if rate.GreaterThan(hundred) {
		legacy = true
		observability.RecordLegacyCommissionFallback()
		c.logger.Warn("Legacy commission rate, using default percentage",
			ports.String("contract_id", contract.ID),
			ports.String("hotel_id", contract.HotelID),
			ports.Amount("stored_rate", rate),
			ports.Amount("applied_rate", LegacyDefaultRate),
		)
		rate = LegacyDefaultRate
	}

	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return nil, invalidRate(contract, rate)
	}

	gross, err := money.GrossFromNet(hotelNetRevenue, rate)
	if err != nil {
		return nil, invalidRate(contract, rate).
			WithDetail("reason", "rate leaves no gross to back-derive")
	}
	gross = money.RoundHalfUp(gross)

	return &models.CommissionBreakdown{
		HotelNetRevenue:  hotelNetRevenue,
		CommissionRate:   rate,
		GrossRevenue:     gross,
		CommissionAmount: gross.Sub(hotelNetRevenue),
		PayoutAmount:     hotelNetRevenue,
		LegacyRateUsed:   legacy,
	}, nil
}

func invalidRate(contract *models.Contract, rate decimal.Decimal) *domain.DomainError {
	return domain.ErrInvalidCommissionRate.
		WithDetail("field", "commission_rate").
		WithDetail("contract_id", contract.ID).
		WithDetail("commission_rate", rate.String())
}

var _ svcports.CommissionCalculator = (*Calculator)(nil)
