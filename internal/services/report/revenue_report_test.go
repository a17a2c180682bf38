package report_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/internal/services/report"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/fixtures"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/mocks"
)

func TestWriteDailyRevenueXLSX(t *testing.T) {
	revenue := new(mocks.MockRevenueService)
	svc := report.NewService(revenue, mocks.NewRecordingLogger())
	ctx := context.Background()
	q := svcports.DailyRevenueQuery{DateFrom: fixtures.Date(2025, 3, 1), DateTo: fixtures.Date(2025, 3, 2)}

	revenue.On("GetDailyRevenue", ctx, q).Return([]models.DailyHotelRevenue{
		{
			HotelID: "hotel-1", HotelName: "Hotel One", BizDate: fixtures.Date(2025, 3, 2), BookingsCount: 2,
			GrossSum: fixtures.Dec("2000000"), ProcessingFeeSum: fixtures.Dec("0"),
			PlatformFeeSum: fixtures.Dec("200000"), HotelNetSum: fixtures.Dec("1800000"),
		},
		{
			HotelID: "hotel-1", HotelName: "Hotel One", BizDate: fixtures.Date(2025, 3, 1), BookingsCount: 1,
			GrossSum: fixtures.Dec("1000000"), ProcessingFeeSum: fixtures.Dec("0"),
			PlatformFeeSum: fixtures.Dec("100000"), HotelNetSum: fixtures.Dec("900000"),
		},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteDailyRevenueXLSX(ctx, q, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.DailyRevenueSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Business Date", rows[0][0])
	assert.Equal(t, "Hotel Net", rows[0][7])
	assert.Equal(t, []string{"2025-03-02", "hotel-1", "Hotel One", "2", "2000000", "0", "200000", "1800000"}, rows[1])
	assert.Equal(t, "2025-03-01", rows[2][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "3", rows[3][3])
	assert.Equal(t, "2700000", rows[3][7])
}

func TestWriteDailyRevenueXLSX_PropagatesValidationError(t *testing.T) {
	revenue := new(mocks.MockRevenueService)
	svc := report.NewService(revenue, mocks.NewRecordingLogger())
	q := svcports.DailyRevenueQuery{DateFrom: fixtures.Date(2025, 3, 2), DateTo: fixtures.Date(2025, 3, 1)}

	revenue.On("GetDailyRevenue", mock.Anything, q).Return(nil, domain.ErrInvalidDateRange)

	var buf bytes.Buffer
	err := svc.WriteDailyRevenueXLSX(context.Background(), q, &buf)

	assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
	assert.Zero(t, buf.Len())
}
