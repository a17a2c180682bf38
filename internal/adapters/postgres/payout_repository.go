package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

const payoutColumns = `id::text, hotel_id, cover_date, total_net_amount, status, note, created_at`

// PayoutRepository implements ports.PayoutRepository
type PayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db ports.DBPort) *PayoutRepository {
	return &PayoutRepository{pool: db.GetDB()}
}

// LockHotelDate serializes delete+insert for one (hotel, cover_date) until
// the surrounding transaction ends
func (r *PayoutRepository) LockHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) error {
	if db == nil {
		return fmt.Errorf("payout lock requires a transaction")
	}
	_, err := db.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('payout:' || $1::text || ':' || $2::text, 0))`,
		hotelID, coverDate.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("lock payout %s/%s: %w", hotelID, coverDate.Format("2006-01-02"), err)
	}
	return nil
}

// DeleteByHotelDate removes any payout for the pair and returns the deleted ids
func (r *PayoutRepository) DeleteByHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) ([]string, error) {
	rows, err := executor(db, r.pool).Query(ctx,
		`DELETE FROM payouts WHERE hotel_id = $1 AND cover_date = $2 RETURNING id::text`,
		hotelID, pgDate(coverDate),
	)
	if err != nil {
		return nil, fmt.Errorf("delete payouts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted payout id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted payouts: %w", err)
	}
	return ids, nil
}

// Create inserts a payout
func (r *PayoutRepository) Create(ctx context.Context, db ports.DBTX, payout *models.Payout) error {
	if payout.ID == "" {
		payout.ID = uuid.New().String()
	}
	if payout.Status == "" {
		payout.Status = models.PayoutStatusScheduled
	}

	amount, err := decimalToNumeric(payout.TotalNetAmount)
	if err != nil {
		return err
	}

	note := []byte("{}")
	if payout.Note != nil {
		if note, err = json.Marshal(payout.Note); err != nil {
			return fmt.Errorf("marshal payout note: %w", err)
		}
	}

	err = executor(db, r.pool).QueryRow(ctx, `
		INSERT INTO payouts (id, hotel_id, cover_date, total_net_amount, status, note)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		payout.ID, payout.HotelID, pgDate(payout.CoverDate), amount, string(payout.Status), note,
	).Scan(&payout.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_payouts_hotel_cover_date") {
			return domain.WrapError(domain.ErrorCodePayoutConflict, "payout already exists for hotel and date", err).
				WithDetail("hotel_id", payout.HotelID).
				WithDetail("cover_date", payout.CoverDate.Format("2006-01-02"))
		}
		return fmt.Errorf("create payout: %w", err)
	}
	return nil
}

// GetByID retrieves a payout by id
func (r *PayoutRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Payout, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrPayoutNotFound.WithDetail("payout_id", id)
	}
	row := executor(db, r.pool).QueryRow(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE id = $1::uuid`, id)

	payout, err := scanPayout(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPayoutNotFound.WithDetail("payout_id", id)
		}
		return nil, fmt.Errorf("get payout: %w", err)
	}
	return payout, nil
}

// GetByHotelDate retrieves the payout for a (hotel, cover_date) pair
func (r *PayoutRepository) GetByHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) (*models.Payout, error) {
	row := executor(db, r.pool).QueryRow(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE hotel_id = $1 AND cover_date = $2`,
		hotelID, pgDate(coverDate),
	)

	payout, err := scanPayout(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPayoutNotFound.
				WithDetail("hotel_id", hotelID).
				WithDetail("cover_date", coverDate.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get payout by hotel date: %w", err)
	}
	return payout, nil
}

// ListByHotel returns a hotel's payouts with cover_date in [from, to]
func (r *PayoutRepository) ListByHotel(ctx context.Context, db ports.DBTX, hotelID string, from, to time.Time) ([]*models.Payout, error) {
	rows, err := executor(db, r.pool).Query(ctx, `
		SELECT `+payoutColumns+`
		FROM payouts
		WHERE hotel_id = $1 AND cover_date BETWEEN $2 AND $3
		ORDER BY cover_date DESC`,
		hotelID, pgDate(from), pgDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*models.Payout
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		payouts = append(payouts, payout)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}
	return payouts, nil
}

func scanPayout(row rowScanner) (*models.Payout, error) {
	var (
		p         models.Payout
		coverDate pgtype.Date
		amount    pgtype.Numeric
		status    string
		note      []byte
	)
	if err := row.Scan(&p.ID, &p.HotelID, &coverDate, &amount, &status, &note, &p.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.TotalNetAmount, err = pgNumericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("total_net_amount: %w", err)
	}
	p.CoverDate = dateValue(coverDate)
	p.Status = models.PayoutStatus(status)

	if len(note) > 0 && string(note) != "{}" {
		var n models.PayoutNote
		if err := json.Unmarshal(note, &n); err != nil {
			return nil, fmt.Errorf("unmarshal payout note: %w", err)
		}
		p.Note = &n
	}
	return &p, nil
}
