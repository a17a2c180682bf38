package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// ContractRepository implements ports.ContractRepository
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db ports.DBPort) *ContractRepository {
	return &ContractRepository{pool: db.GetDB()}
}

// ListCandidates returns every contract that could apply to hotelID on date
func (r *ContractRepository) ListCandidates(ctx context.Context, db ports.DBTX, hotelID string, date time.Time, statuses []models.ContractStatus) ([]*models.Contract, error) {
	statusArgs := make([]string, len(statuses))
	for i, s := range statuses {
		statusArgs[i] = string(s)
	}

	rows, err := executor(db, r.pool).Query(ctx, `
		SELECT id, hotel_id, commission_rate, status, start_date, end_date, signed_date, created_at
		FROM contracts
		WHERE hotel_id = $1
		  AND status = ANY($2)
		  AND start_date <= $3
		  AND (end_date IS NULL OR end_date >= $3)`,
		hotelID, statusArgs, pgDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list contract candidates: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		var (
			c                 models.Contract
			rate              pgtype.Numeric
			status            string
			start             pgtype.Date
			endDate, signedOn pgtype.Date
		)
		if err := rows.Scan(&c.ID, &c.HotelID, &rate, &status, &start, &endDate, &signedOn, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		if c.CommissionRate, err = pgNumericToDecimal(rate); err != nil {
			return nil, fmt.Errorf("commission_rate of contract %s: %w", c.ID, err)
		}
		c.Status = models.ContractStatus(status)
		c.StartDate = dateValue(start)
		c.EndDate = datePtr(endDate)
		c.SignedDate = datePtr(signedOn)
		contracts = append(contracts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return contracts, nil
}
