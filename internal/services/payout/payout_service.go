package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

// DefaultBatchLockTTL bounds how long a crashed batch keeps the date locked
const DefaultBatchLockTTL = 10 * time.Minute

// Service implements svcports.PayoutService
type Service struct {
	db           ports.DBPort
	payouts      ports.PayoutRepository
	bankAccounts ports.BankAccountRepository
	revenue      svcports.RevenueService
	contracts    svcports.ContractResolver
	calculator   svcports.CommissionCalculator
	locker       ports.Locker // nil runs batches unguarded
	batchLockTTL time.Duration
	logger       ports.Logger
	now          func() time.Time
}

// NewService creates a new payout service
func NewService(
	db ports.DBPort,
	payouts ports.PayoutRepository,
	bankAccounts ports.BankAccountRepository,
	revenue svcports.RevenueService,
	contracts svcports.ContractResolver,
	calculator svcports.CommissionCalculator,
	locker ports.Locker,
	logger ports.Logger,
) *Service {
	return &Service{
		db:           db,
		payouts:      payouts,
		bankAccounts: bankAccounts,
		revenue:      revenue,
		contracts:    contracts,
		calculator:   calculator,
		locker:       locker,
		batchLockTTL: DefaultBatchLockTTL,
		logger:       logger,
		now:          timeutil.Now,
	}
}

// WithBatchLockTTL overrides how long a daily batch holds its lock
func (s *Service) WithBatchLockTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.batchLockTTL = ttl
	}
	return s
}

// calculation is the shared result of the read-only payout steps
type calculation struct {
	hotelID   string
	coverDate time.Time
	breakdown *models.CommissionBreakdown
	contract  *models.Contract
	account   *models.BankAccount
}

// prepare resolves revenue, contract and bank account and runs the
// commission calculator. It never writes. The bank account is read through
// db; nil means the pool.
func (s *Service) prepare(ctx context.Context, db ports.DBTX, req svcports.CreatePayoutRequest) (*calculation, error) {
	if req.HotelID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "hotel_id", "hotel id is required")
	}
	if req.CoverDate.IsZero() {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "cover_date", "cover date is required")
	}
	coverDate := timeutil.DateOnly(req.CoverDate)

	var net decimal.Decimal
	if req.TotalNetAmount != nil {
		if req.TotalNetAmount.IsNegative() {
			return nil, domain.ErrInvalidAmount.
				WithDetail("field", "total_net_amount").
				WithDetail("amount", req.TotalNetAmount.String())
		}
		net = *req.TotalNetAmount
	} else {
		amount, err := s.netRevenueForDay(ctx, req.HotelID, coverDate)
		if err != nil {
			return nil, err
		}
		net = amount
	}

	contract, err := s.contracts.ResolveContract(ctx, req.HotelID, coverDate)
	if err != nil {
		return nil, err
	}

	account, err := s.bankAccounts.GetDefaultActive(ctx, db, req.HotelID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.calculator.Calculate(net, contract)
	if err != nil {
		return nil, err
	}

	return &calculation{
		hotelID:   req.HotelID,
		coverDate: coverDate,
		breakdown: breakdown,
		contract:  contract,
		account:   account,
	}, nil
}

func (s *Service) netRevenueForDay(ctx context.Context, hotelID string, day time.Time) (decimal.Decimal, error) {
	hotel := hotelID
	days, err := s.revenue.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{
		HotelID:  &hotel,
		DateFrom: day,
		DateTo:   day,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("daily revenue: %w", err)
	}
	if len(days) == 0 {
		return decimal.Zero, s.noRevenueError(ctx, hotelID, day)
	}

	net := decimal.Zero
	for _, d := range days {
		net = net.Add(d.HotelNetSum)
	}
	return net, nil
}

// noRevenueError carries the hotel's paid date span so an operator can see
// whether the date is simply outside the hotel's activity.
func (s *Service) noRevenueError(ctx context.Context, hotelID string, day time.Time) error {
	earliest, latest := "none", "none"
	span, err := s.revenue.EarliestLatestPaidDates(ctx, hotelID)
	if err != nil {
		s.logger.Warn("Failed to load paid date range",
			ports.String("hotel_id", hotelID),
			ports.Err(err),
		)
	} else if span != nil {
		if span.Earliest != nil {
			earliest = timeutil.FormatDate(*span.Earliest)
		}
		if span.Latest != nil {
			latest = timeutil.FormatDate(*span.Latest)
		}
	}

	return domain.ErrNoRevenueForDate.
		WithMessage("no paid revenue for hotel %s on %s (earliest paid: %s, latest paid: %s)",
			hotelID, timeutil.FormatDate(day), earliest, latest).
		WithDetail("hotel_id", hotelID).
		WithDetail("cover_date", timeutil.FormatDate(day)).
		WithDetail("earliest_paid_date", earliest).
		WithDetail("latest_paid_date", latest)
}

// CreatePayout computes the payout for one hotel and day and stores it,
// replacing any payout already stored for the pair. The replace runs under
// an advisory lock on (hotel, date) so concurrent calls serialize.
func (s *Service) CreatePayout(ctx context.Context, req svcports.CreatePayoutRequest) (*models.Payout, error) {
	calc, err := s.prepare(ctx, nil, req)
	if err != nil {
		return nil, err
	}

	payout := &models.Payout{
		HotelID:        calc.hotelID,
		CoverDate:      calc.coverDate,
		TotalNetAmount: calc.breakdown.PayoutAmount,
		Status:         models.PayoutStatusScheduled,
		Note: &models.PayoutNote{
			Calculation:  *calc.breakdown,
			BankAccount:  models.SnapshotBankAccount(calc.account),
			Contract:     models.SnapshotContract(calc.contract),
			CalculatedAt: s.now(),
		},
	}

	var superseded []string
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.payouts.LockHotelDate(ctx, tx, calc.hotelID, calc.coverDate); err != nil {
			return fmt.Errorf("lock hotel date: %w", err)
		}

		ids, err := s.payouts.DeleteByHotelDate(ctx, tx, calc.hotelID, calc.coverDate)
		if err != nil {
			return fmt.Errorf("delete existing payout: %w", err)
		}
		superseded = ids
		if len(ids) > 0 {
			payout.Note.SupersededPayoutID = ids[0]
		}

		if err := s.payouts.Create(ctx, tx, payout); err != nil {
			return fmt.Errorf("create payout: %w", err)
		}
		return nil
	})
	if err != nil {
		observability.RecordPayout("failed", 0)
		return nil, err
	}

	for _, id := range superseded {
		observability.RecordPayout("superseded", 0)
		s.logger.Warn("Existing payout superseded",
			ports.String("hotel_id", calc.hotelID),
			ports.Date("cover_date", calc.coverDate),
			ports.String("superseded_payout_id", id),
			ports.String("payout_id", payout.ID),
		)
	}
	observability.RecordPayout("created", payout.TotalNetAmount.InexactFloat64())
	s.logger.Info("Payout scheduled",
		ports.String("payout_id", payout.ID),
		ports.String("hotel_id", payout.HotelID),
		ports.Date("cover_date", payout.CoverDate),
		ports.Amount("payout_amount", payout.TotalNetAmount),
		ports.String("contract_id", calc.contract.ID),
		ports.Bool("legacy_rate_used", calc.breakdown.LegacyRateUsed),
	)
	return payout, nil
}

// PreviewPayout returns what CreatePayout would store, without storing it
func (s *Service) PreviewPayout(ctx context.Context, req svcports.CreatePayoutRequest) (*models.PayoutPreview, error) {
	var preview *models.PayoutPreview
	// One snapshot for the bank account and the payout it would replace
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		calc, err := s.prepare(ctx, tx, req)
		if err != nil {
			return err
		}

		preview = &models.PayoutPreview{
			HotelID:     calc.hotelID,
			CoverDate:   calc.coverDate,
			Calculation: *calc.breakdown,
			BankAccount: models.SnapshotBankAccount(calc.account),
			Contract:    models.SnapshotContract(calc.contract),
		}

		existing, err := s.payouts.GetByHotelDate(ctx, tx, calc.hotelID, calc.coverDate)
		switch {
		case err == nil:
			preview.WouldSupersedeID = existing.ID
		case errors.Is(err, domain.ErrPayoutNotFound):
		default:
			return fmt.Errorf("look up existing payout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// ProcessDailyPayouts creates a payout for every hotel with positive net
// revenue on targetDate. A failing hotel is recorded in the summary and the
// batch moves on.
func (s *Service) ProcessDailyPayouts(ctx context.Context, targetDate time.Time) (*models.PayoutBatchSummary, error) {
	if targetDate.IsZero() {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "target_date", "target date is required")
	}
	day := timeutil.DateOnly(targetDate)
	start := time.Now()

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, "payout-batch:"+timeutil.FormatDate(day), s.batchLockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			// Release on a fresh context so a cancelled batch still frees the date
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil {
				s.logger.Warn("Failed to release payout batch lock",
					ports.Date("target_date", day),
					ports.Err(err),
				)
			}
		}()
	}

	days, err := s.revenue.GetDailyRevenue(ctx, svcports.DailyRevenueQuery{DateFrom: day, DateTo: day})
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}

	summary := &models.PayoutBatchSummary{
		TargetDate: day,
		Results:    make([]models.PayoutBatchResult, 0, len(days)),
	}

	for _, d := range days {
		if !d.HotelNetSum.IsPositive() {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Payout batch interrupted",
				ports.Date("target_date", day),
				ports.Int("processed", summary.TotalProcessed),
				ports.Err(err),
			)
			break
		}

		net := d.HotelNetSum
		result := models.PayoutBatchResult{HotelID: d.HotelID, Amount: net}
		payout, err := s.CreatePayout(ctx, svcports.CreatePayoutRequest{
			HotelID:        d.HotelID,
			CoverDate:      day,
			TotalNetAmount: &net,
		})
		if err != nil {
			result.Error = err.Error()
			summary.Failed++
			s.logger.Error("Payout failed for hotel",
				ports.String("hotel_id", d.HotelID),
				ports.Date("target_date", day),
				ports.Err(err),
			)
		} else {
			result.Success = true
			result.PayoutID = payout.ID
			result.Amount = payout.TotalNetAmount
			summary.Successful++
		}
		summary.TotalProcessed++
		summary.Results = append(summary.Results, result)
	}

	status := "completed"
	if summary.Failed > 0 {
		status = "partial"
	}
	observability.RecordPayoutBatch(status, time.Since(start).Seconds(), summary.Successful, summary.Failed)
	s.logger.Info("Payout batch finished",
		ports.Date("target_date", day),
		ports.Int("total", summary.TotalProcessed),
		ports.Int("successful", summary.Successful),
		ports.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ListPayouts returns a hotel's payouts with cover dates in [from, to]
func (s *Service) ListPayouts(ctx context.Context, hotelID string, from, to time.Time) ([]*models.Payout, error) {
	if hotelID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "hotel_id", "hotel id is required")
	}
	from, to = timeutil.DateOnly(from), timeutil.DateOnly(to)
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange.WithDetail("field", "to")
	}
	return s.payouts.ListByHotel(ctx, nil, hotelID, from, to)
}

// GetPayout returns one payout by id
func (s *Service) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	if id == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "id", "payout id is required")
	}
	return s.payouts.GetByID(ctx, nil, id)
}

var _ svcports.PayoutService = (*Service)(nil)
