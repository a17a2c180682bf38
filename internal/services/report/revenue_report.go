package report

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

// DailyRevenueSheet is the worksheet name of the daily revenue export
const DailyRevenueSheet = "Daily Revenue"

var dailyRevenueHeader = []interface{}{
	"Business Date", "Hotel ID", "Hotel Name", "Bookings",
	"Gross", "Processing Fee", "Platform Fee", "Hotel Net",
}

// Service implements svcports.ReportService
type Service struct {
	revenue svcports.RevenueService
	logger  ports.Logger
}

// NewService creates a new report service
func NewService(revenue svcports.RevenueService, logger ports.Logger) *Service {
	return &Service{revenue: revenue, logger: logger}
}

// WriteDailyRevenueXLSX renders the daily revenue rows for q as a workbook
// with a totals row at the bottom
func (s *Service) WriteDailyRevenueXLSX(ctx context.Context, q svcports.DailyRevenueQuery, w io.Writer) error {
	days, err := s.revenue.GetDailyRevenue(ctx, q)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", ports.Err(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", DailyRevenueSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(DailyRevenueSheet, "A1", &dailyRevenueHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var bookings int
	gross, processing, platform, net := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i, d := range days {
		if err := writeRow(f, i+2, revenueRow(d)); err != nil {
			return err
		}
		bookings += d.BookingsCount
		gross = gross.Add(d.GrossSum)
		processing = processing.Add(d.ProcessingFeeSum)
		platform = platform.Add(d.PlatformFeeSum)
		net = net.Add(d.HotelNetSum)
	}

	totals := []interface{}{"Total", "", "", bookings, amount(gross), amount(processing), amount(platform), amount(net)}
	if err := writeRow(f, len(days)+2, totals); err != nil {
		return err
	}

	if err := f.SetColWidth(DailyRevenueSheet, "A", "H", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Daily revenue exported",
		ports.Date("date_from", q.DateFrom),
		ports.Date("date_to", q.DateTo),
		ports.Int("rows", len(days)),
	)
	return nil
}

func revenueRow(d models.DailyHotelRevenue) []interface{} {
	return []interface{}{
		timeutil.FormatDate(d.BizDate),
		d.HotelID,
		d.HotelName,
		d.BookingsCount,
		amount(d.GrossSum),
		amount(d.ProcessingFeeSum),
		amount(d.PlatformFeeSum),
		amount(d.HotelNetSum),
	}
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(DailyRevenueSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// amount converts a rounded amount to a spreadsheet number
func amount(d decimal.Decimal) float64 {
	return money.RoundHalfUp(d).InexactFloat64()
}

var _ svcports.ReportService = (*Service)(nil)
