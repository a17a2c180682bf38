package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/internal/services/revenue"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/fixtures"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/mocks"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

const hcm = "Asia/Ho_Chi_Minh"

func newService(t *testing.T) (*revenue.Service, *mocks.MockRevenueRepository, *mocks.RecordingLogger) {
	t.Helper()
	locations, err := timeutil.NewLocationCache(hcm)
	require.NoError(t, err)
	repo := new(mocks.MockRevenueRepository)
	logger := mocks.NewRecordingLogger()
	return revenue.NewService(repo, locations, logger), repo, logger
}

func paidRow(id, hotelID, hotelName, tz string, paidAt time.Time, gross, platform string) models.PaidPaymentRow {
	p := fixtures.NewPayment().
		WithBooking("booking-"+id, hotelID).
		WithAmounts(fixtures.Dec(gross), fixtures.Dec("0"), fixtures.Dec(platform)).
		Paid(paidAt).
		Build()
	p.ID = id
	return fixtures.PaidRow(p, hotelName, tz)
}

func TestGetDailyRevenue_SinglePaidPayment(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	hotelID := "hotel-1"
	day := fixtures.Date(2025, 3, 1)

	// 09:30 in Ho Chi Minh City on 2025-03-01
	paidAt := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	repo.On("ListPaidPayments", ctx, nil, &hotelID, fixtures.Date(2025, 2, 28), fixtures.Date(2025, 3, 3)).
		Return([]models.PaidPaymentRow{paidRow("p1", hotelID, "Hotel One", hcm, paidAt, "1000000", "100000")}, nil)

	days, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{HotelID: &hotelID, DateFrom: day, DateTo: day})

	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, day, days[0].BizDate)
	assert.Equal(t, 1, days[0].BookingsCount)
	assert.True(t, days[0].GrossSum.Equal(fixtures.Dec("1000000")))
	assert.True(t, days[0].PlatformFeeSum.Equal(fixtures.Dec("100000")))
	assert.True(t, days[0].HotelNetSum.Equal(fixtures.Dec("900000")))
	repo.AssertExpectations(t)
}

func TestGetDailyRevenue_BucketsByHotelTimezone(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	rows := []models.PaidPaymentRow{
		// 2025-02-28 23:30 UTC is already 2025-03-01 in Ho Chi Minh City
		paidRow("p1", "hotel-1", "Hotel One", hcm, time.Date(2025, 2, 28, 23, 30, 0, 0, time.UTC), "500000", "50000"),
		// 2025-03-01 17:30 UTC is 2025-03-02 locally, outside the range
		paidRow("p2", "hotel-1", "Hotel One", hcm, time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC), "700000", "70000"),
		// Same instant as p2 but the hotel runs on UTC
		paidRow("p3", "hotel-2", "Hotel Two", "UTC", time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC), "300000", "30000"),
	}
	repo.On("ListPaidPayments", ctx, nil, (*string)(nil), mock.Anything, mock.Anything).Return(rows, nil)

	days, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		DateFrom: fixtures.Date(2025, 3, 1),
		DateTo:   fixtures.Date(2025, 3, 1),
	})

	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "hotel-1", days[0].HotelID)
	assert.True(t, days[0].HotelNetSum.Equal(fixtures.Dec("450000")))
	assert.Equal(t, "hotel-2", days[1].HotelID)
	assert.True(t, days[1].HotelNetSum.Equal(fixtures.Dec("270000")))
}

func TestGetDailyRevenue_OrdersByDateDescThenHotelName(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	rows := []models.PaidPaymentRow{
		paidRow("p1", "hotel-b", "Bamboo Inn", hcm, time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC), "100000", "10000"),
		paidRow("p2", "hotel-a", "Azure Bay", hcm, time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC), "100000", "10000"),
		paidRow("p3", "hotel-b", "Bamboo Inn", hcm, time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC), "100000", "10000"),
		paidRow("p4", "hotel-b", "Bamboo Inn", hcm, time.Date(2025, 3, 2, 5, 0, 0, 0, time.UTC), "200000", "20000"),
	}
	repo.On("ListPaidPayments", ctx, nil, (*string)(nil), mock.Anything, mock.Anything).Return(rows, nil)

	days, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		DateFrom: fixtures.Date(2025, 3, 1),
		DateTo:   fixtures.Date(2025, 3, 2),
	})

	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, fixtures.Date(2025, 3, 2), days[0].BizDate)
	assert.Equal(t, "hotel-b", days[0].HotelID)
	assert.Equal(t, 2, days[0].BookingsCount)
	assert.True(t, days[0].HotelNetSum.Equal(fixtures.Dec("270000")))

	assert.Equal(t, fixtures.Date(2025, 3, 1), days[1].BizDate)
	assert.Equal(t, "Azure Bay", days[1].HotelName)
	assert.Equal(t, "Bamboo Inn", days[2].HotelName)
}

func TestGetDailyRevenue_DaysWithoutPaymentsAreAbsent(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("ListPaidPayments", ctx, nil, (*string)(nil), mock.Anything, mock.Anything).
		Return([]models.PaidPaymentRow{}, nil)

	days, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		DateFrom: fixtures.Date(2025, 3, 1),
		DateTo:   fixtures.Date(2025, 3, 7),
	})

	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestGetDailyRevenue_UnknownTimezoneFallsBack(t *testing.T) {
	svc, repo, logger := newService(t)
	ctx := context.Background()

	rows := []models.PaidPaymentRow{
		paidRow("p1", "hotel-1", "Hotel One", "Mars/Olympus", time.Date(2025, 2, 28, 23, 30, 0, 0, time.UTC), "100000", "10000"),
	}
	repo.On("ListPaidPayments", ctx, nil, (*string)(nil), mock.Anything, mock.Anything).Return(rows, nil)

	days, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		DateFrom: fixtures.Date(2025, 3, 1),
		DateTo:   fixtures.Date(2025, 3, 1),
	})

	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, fixtures.Date(2025, 3, 1), days[0].BizDate)
	assert.Len(t, logger.ByLevel("warn"), 1)
}

func TestGetDailyRevenue_RejectsInvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
	}{
		{"to before from", fixtures.Date(2025, 3, 2), fixtures.Date(2025, 3, 1)},
		{"longer than a year", fixtures.Date(2024, 1, 1), fixtures.Date(2025, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)

			_, err := svc.GetDailyRevenue(context.Background(), svcports.DailyRevenueQuery{DateFrom: tt.from, DateTo: tt.to})

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
			assert.Equal(t, "date_to", domain.GetErrorDetails(err)["field"])
			repo.AssertNotCalled(t, "ListPaidPayments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetDailyRevenue_AcceptsFullYear(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("ListPaidPayments", ctx, nil, (*string)(nil), mock.Anything, mock.Anything).Return([]models.PaidPaymentRow{}, nil)

	// 2024 is a leap year: 366 days
	_, err := svc.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		DateFrom: fixtures.Date(2024, 1, 1),
		DateTo:   fixtures.Date(2024, 12, 31),
	})

	assert.NoError(t, err)
}

func TestEarliestLatestPaidDates(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	earliest := time.Date(2025, 1, 3, 4, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
	repo.On("PaidDateRange", ctx, nil, "hotel-1").
		Return(&models.PaidDateRange{HotelID: "hotel-1", Earliest: &earliest, Latest: &latest, Count: 12}, nil)

	span, err := svc.EarliestLatestPaidDates(ctx, "hotel-1")

	require.NoError(t, err)
	assert.Equal(t, 12, span.Count)
	assert.Equal(t, latest, *span.Latest)

	_, err = svc.EarliestLatestPaidDates(ctx, "")
	assert.True(t, domain.IsValidationError(err))
}
