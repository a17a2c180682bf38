package commission_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/services/commission"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/fixtures"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/mocks"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
)

var created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		net            string
		rate           string
		wantRate       string
		wantGross      string
		wantCommission string
	}{
		{"ten percent", "900000", "10", "10", "1000000", "100000"},
		{"twelve percent rounds half up", "1000000", "12", "12", "1136364", "136364"},
		{"zero rate", "500000", "0", "0", "500000", "0"},
		{"fractional rate", "985000", "1.5", "1.5", "1000000", "15000"},
		{"zero revenue", "0", "10", "10", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := commission.NewCalculator(mocks.NewRecordingLogger())
			contract := fixtures.NewContract("c-1", "hotel-1", fixtures.Dec(tt.rate), created)

			got, err := calc.Calculate(fixtures.Dec(tt.net), contract)

			require.NoError(t, err)
			assert.True(t, got.CommissionRate.Equal(fixtures.Dec(tt.wantRate)), "rate %s", got.CommissionRate)
			assert.True(t, got.GrossRevenue.Equal(fixtures.Dec(tt.wantGross)), "gross %s", got.GrossRevenue)
			assert.True(t, got.CommissionAmount.Equal(fixtures.Dec(tt.wantCommission)), "commission %s", got.CommissionAmount)
			assert.True(t, got.PayoutAmount.Equal(fixtures.Dec(tt.net)), "payout must equal net revenue")
			assert.True(t, got.HotelNetRevenue.Equal(fixtures.Dec(tt.net)))
			assert.False(t, got.LegacyRateUsed)
		})
	}
}

func TestCalculate_LegacyRateFallsBackToTenPercent(t *testing.T) {
	logger := mocks.NewRecordingLogger()
	calc := commission.NewCalculator(logger)
	contract := fixtures.NewContract("legacy", "hotel-1", fixtures.Dec("500000"), created)

	got, err := calc.Calculate(fixtures.Dec("900000"), contract)

	require.NoError(t, err)
	assert.True(t, got.LegacyRateUsed)
	assert.True(t, got.CommissionRate.Equal(fixtures.Dec("10")))
	assert.True(t, got.GrossRevenue.Equal(fixtures.Dec("1000000")))
	assert.True(t, got.PayoutAmount.Equal(fixtures.Dec("900000")))

	warns := logger.ByLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "legacy", warns[0].Fields["contract_id"])
	assert.Equal(t, "500000", warns[0].Fields["stored_rate"])
}

func TestCalculate_RejectsInvalidRates(t *testing.T) {
	for _, rate := range []string{"-1", "-0.01", "100"} {
		t.Run(rate, func(t *testing.T) {
			calc := commission.NewCalculator(mocks.NewRecordingLogger())
			contract := fixtures.NewContract("c-1", "hotel-1", fixtures.Dec(rate), created)

			_, err := calc.Calculate(fixtures.Dec("900000"), contract)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidCommissionRate))
			assert.Equal(t, "c-1", domain.GetErrorDetails(err)["contract_id"])
		})
	}
}

func TestCalculate_FullRateCarriesReason(t *testing.T) {
	calc := commission.NewCalculator(mocks.NewRecordingLogger())

	_, err := calc.Calculate(fixtures.Dec("900000"), fixtures.NewContract("c-1", "hotel-1", fixtures.Dec("100"), created))
	require.Error(t, err)
	assert.Equal(t, "rate leaves no gross to back-derive", domain.GetErrorDetails(err)["reason"])

	_, err = calc.Calculate(fixtures.Dec("900000"), fixtures.NewContract("c-2", "hotel-1", fixtures.Dec("-1"), created))
	require.Error(t, err)
	assert.NotContains(t, domain.GetErrorDetails(err), "reason")
}

func TestCalculate_RejectsNegativeRevenue(t *testing.T) {
	calc := commission.NewCalculator(mocks.NewRecordingLogger())
	contract := fixtures.NewContract("c-1", "hotel-1", fixtures.Dec("10"), created)

	_, err := calc.Calculate(fixtures.Dec("-1"), contract)

	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestCalculate_GrossRoundTripsToNet(t *testing.T) {
	calc := commission.NewCalculator(mocks.NewRecordingLogger())
	oneUnit := fixtures.Dec("1")

	for _, rate := range []string{"1", "7.5", "10", "12", "33.33", "99"} {
		for _, net := range []string{"1", "99999", "900000", "123456789"} {
			contract := fixtures.NewContract("c", "h", fixtures.Dec(rate), created)
			got, err := calc.Calculate(fixtures.Dec(net), contract)
			require.NoError(t, err)

			back := money.RoundHalfUp(money.NetFromGross(got.GrossRevenue, got.CommissionRate))
			diff := back.Sub(fixtures.Dec(net)).Abs()
			assert.True(t, diff.LessThanOrEqual(oneUnit), "rate %s net %s: gross %s maps back to %s", rate, net, got.GrossRevenue, back)
		}
	}
}
