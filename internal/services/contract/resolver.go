package contract

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

var percentCeiling = decimal.NewFromInt(100)

// Resolver implements svcports.ContractResolver
type Resolver struct {
	repo   ports.ContractRepository
	logger ports.Logger
}

// NewResolver creates a new contract resolver
func NewResolver(repo ports.ContractRepository, logger ports.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// ResolveContract picks the one contract that governs hotelID's commission
// on date. Several overlapping candidates are expected; RankContracts
// decides between them.
func (r *Resolver) ResolveContract(ctx context.Context, hotelID string, date time.Time) (*models.Contract, error) {
	day := timeutil.DateOnly(date)

	candidates, err := r.repo.ListCandidates(ctx, nil, hotelID, day, models.PayoutEligibleContractStatuses)
	if err != nil {
		return nil, fmt.Errorf("list candidate contracts: %w", err)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoActiveContract.
			WithDetail("hotel_id", hotelID).
			WithDetail("date", timeutil.FormatDate(day))
	}

	ranked := RankContracts(candidates)
	chosen := ranked[0]
	if len(ranked) > 1 {
		r.logger.Debug("Multiple contracts cover date, using top ranked",
			ports.String("hotel_id", hotelID),
			ports.Date("date", day),
			ports.Int("candidates", len(ranked)),
			ports.String("contract_id", chosen.ID),
		)
	}
	return chosen, nil
}

// RankContracts returns a sorted copy of contracts, best first:
// percentage rates before legacy absolute amounts, then newest created,
// then newest signed (unsigned last), then contract id.
func RankContracts(contracts []*models.Contract) []*models.Contract {
	ranked := make([]*models.Contract, len(contracts))
	copy(ranked, contracts)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ra, rb := legacyRank(a), legacyRank(b); ra != rb {
			return ra < rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		switch {
		case a.SignedDate != nil && b.SignedDate != nil:
			if !a.SignedDate.Equal(*b.SignedDate) {
				return a.SignedDate.After(*b.SignedDate)
			}
		case a.SignedDate != nil:
			return true
		case b.SignedDate != nil:
			return false
		}
		return a.ID < b.ID
	})
	return ranked
}

func legacyRank(c *models.Contract) int {
	if c.CommissionRate.GreaterThan(percentCeiling) {
		return 1
	}
	return 0
}

var _ svcports.ContractResolver = (*Resolver)(nil)
