package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

const pgUniqueViolation = "23505"

// executor picks the caller's transaction, or the pool when db is nil
func executor(db ports.DBTX, pool ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return pool
}

// nullText creates a pgtype.Text with empty string handling
func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// textValue unwraps a nullable text column
func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// timePtr unwraps a nullable timestamptz column
func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// datePtr unwraps a nullable date column as UTC midnight
func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	v := dateValue(d)
	return &v
}

// dateValue returns a date column as UTC midnight
func dateValue(d pgtype.Date) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// pgDate converts a calendar date for a DATE parameter
func pgDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// decimalToNumeric converts decimal.Decimal to pgtype.Numeric
func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("convert %s to numeric: %w", d, err)
	}
	return n, nil
}

// pgNumericToDecimal converts pgtype.Numeric to decimal.Decimal
func pgNumericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, fmt.Errorf("numeric is not a finite number")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// isUniqueViolation reports whether err is a unique constraint failure,
// optionally on a specific constraint or index
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isNoRows reports whether a QueryRow found nothing
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
