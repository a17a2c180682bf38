package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// BankAccountRepository implements ports.BankAccountRepository
type BankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db ports.DBPort) *BankAccountRepository {
	return &BankAccountRepository{pool: db.GetDB()}
}

// GetDefaultActive returns the hotel's active default payout account
func (r *BankAccountRepository) GetDefaultActive(ctx context.Context, db ports.DBTX, hotelID string) (*models.BankAccount, error) {
	var (
		b      models.BankAccount
		branch pgtype.Text
		status string
	)
	err := executor(db, r.pool).QueryRow(ctx, `
		SELECT id, hotel_id, holder_name, account_number, bank_name, branch_name, status, is_default
		FROM bank_accounts
		WHERE hotel_id = $1 AND status = 'active' AND is_default
		ORDER BY created_at DESC
		LIMIT 1`,
		hotelID,
	).Scan(&b.ID, &b.HotelID, &b.HolderName, &b.AccountNumber, &b.BankName, &branch, &status, &b.IsDefault)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNoBankAccount.WithDetail("hotel_id", hotelID)
		}
		return nil, fmt.Errorf("get default bank account: %w", err)
	}

	b.BranchName = textValue(branch)
	b.Status = models.BankAccountStatus(status)
	return &b, nil
}
