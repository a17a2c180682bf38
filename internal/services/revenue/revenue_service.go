package revenue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

// MaxRangeDays bounds a single daily revenue query
const MaxRangeDays = 366

// Service implements svcports.RevenueService
type Service struct {
	repo      ports.RevenueRepository
	locations *timeutil.LocationCache
	logger    ports.Logger
}

// NewService creates a new revenue service. Hotels without a valid timezone
// are bucketed using the cache's fallback zone.
func NewService(repo ports.RevenueRepository, locations *timeutil.LocationCache, logger ports.Logger) *Service {
	return &Service{
		repo:      repo,
		locations: locations,
		logger:    logger,
	}
}

type dayKey struct {
	hotelID string
	bizDate time.Time
}

// GetDailyRevenue folds paid payments into per-hotel business days. Amounts
// are the ones stored on each payment; fees are never recomputed here.
func (s *Service) GetDailyRevenue(ctx context.Context, q svcports.DailyRevenueQuery) ([]models.DailyHotelRevenue, error) {
	from := timeutil.DateOnly(q.DateFrom)
	to := timeutil.DateOnly(q.DateTo)

	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange.
			WithDetail("field", "date_to").
			WithDetail("date_from", timeutil.FormatDate(from)).
			WithDetail("date_to", timeutil.FormatDate(to))
	}
	if days := timeutil.DaysInRange(from, to); days > MaxRangeDays {
		return nil, domain.ErrInvalidDateRange.
			WithMessage("date range spans %d days, at most %d allowed", days, MaxRangeDays).
			WithDetail("field", "date_to")
	}

	// Local midnight is within a day of UTC midnight in every zone, so this
	// window holds every payment that can land on a business day in range.
	windowStart := from.AddDate(0, 0, -1)
	windowEnd := to.AddDate(0, 0, 2)

	rows, err := s.repo.ListPaidPayments(ctx, nil, q.HotelID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("list paid payments: %w", err)
	}

	days := make(map[dayKey]*models.DailyHotelRevenue)
	for i := range rows {
		row := &rows[i]
		loc, ok := s.locations.Get(row.HotelTimezone)
		if !ok && row.HotelTimezone != "" {
			s.logger.Warn("Unknown hotel timezone, using fallback",
				ports.String("hotel_id", row.HotelID),
				ports.String("timezone", row.HotelTimezone),
			)
		}

		bizDate := timeutil.BusinessDate(row.PaidAt, loc)
		if bizDate.Before(from) || bizDate.After(to) {
			continue
		}

		key := dayKey{hotelID: row.HotelID, bizDate: bizDate}
		day, found := days[key]
		if !found {
			day = &models.DailyHotelRevenue{
				HotelID:          row.HotelID,
				HotelName:        row.HotelName,
				BizDate:          bizDate,
				GrossSum:         decimal.Zero,
				ProcessingFeeSum: decimal.Zero,
				PlatformFeeSum:   decimal.Zero,
				HotelNetSum:      decimal.Zero,
			}
			days[key] = day
		}
		day.BookingsCount++
		day.GrossSum = day.GrossSum.Add(row.GrossAmount)
		day.ProcessingFeeSum = day.ProcessingFeeSum.Add(row.ProcessingFeeAmount)
		day.PlatformFeeSum = day.PlatformFeeSum.Add(row.PlatformFeeAmount)
		day.HotelNetSum = day.HotelNetSum.Add(row.HotelNetAmount)
	}

	out := make([]models.DailyHotelRevenue, 0, len(days))
	for _, day := range days {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.BizDate.Equal(b.BizDate) {
			return a.BizDate.After(b.BizDate)
		}
		if a.HotelName != b.HotelName {
			return a.HotelName < b.HotelName
		}
		return a.HotelID < b.HotelID
	})

	s.logger.Debug("Daily revenue computed",
		ports.Date("date_from", from),
		ports.Date("date_to", to),
		ports.Int("payments", len(rows)),
		ports.Int("days", len(out)),
	)
	return out, nil
}

// EarliestLatestPaidDates reports the paid_at span of a hotel's payments
func (s *Service) EarliestLatestPaidDates(ctx context.Context, hotelID string) (*models.PaidDateRange, error) {
	if hotelID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "hotel_id", "hotel id is required")
	}
	span, err := s.repo.PaidDateRange(ctx, nil, hotelID)
	if err != nil {
		return nil, fmt.Errorf("paid date range: %w", err)
	}
	return span, nil
}

var _ svcports.RevenueService = (*Service)(nil)
