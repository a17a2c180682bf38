// Package money holds the fixed-point currency helpers used by the ledger,
// revenue and payout code. Amounts are shopspring decimals end to end;
// rounding to the currency minor unit happens only at output boundaries.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places of the smallest currency
// unit. VND has no minor unit.
const MinorUnitPlaces int32 = 0

// divisionPrecision is the number of digits kept when dividing.
const divisionPrecision int32 = 16

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)

	// ErrZeroDivisor is returned when a rate leaves nothing to divide by.
	ErrZeroDivisor = errors.New("money: rate leaves a zero divisor")
)

// Percent converts a percentage rate (10 = 10%) into a fraction (0.1).
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.DivRound(hundred, divisionPrecision)
}

// ApplyRate returns amount × rate/100 at full precision.
func ApplyRate(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).DivRound(hundred, divisionPrecision)
}

// NetFromGross returns gross × (1 − rate/100) at full precision.
func NetFromGross(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Sub(ApplyRate(gross, rate))
}

// GrossFromNet back-computes gross = net / (1 − rate/100) at full precision.
func GrossFromNet(net, rate decimal.Decimal) (decimal.Decimal, error) {
	divisor := decimal.NewFromInt(1).Sub(Percent(rate))
	if divisor.IsZero() {
		return decimal.Zero, ErrZeroDivisor
	}
	return net.DivRound(divisor, divisionPrecision), nil
}

// RoundHalfUp rounds to the currency minor unit, ties towards +∞.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return RoundHalfUpPlaces(d, MinorUnitPlaces)
}

// RoundHalfUpPlaces rounds d to the given number of places, ties towards +∞.
func RoundHalfUpPlaces(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// IsPositive reports whether d > 0.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// ParseAmount parses an amount received at the HTTP boundary.
// Thousands separators ("1,000,000") are accepted.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, errors.New("money: empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse amount %q: %w", raw, err)
	}
	return d, nil
}

// Format renders an amount rounded to the minor unit, for logs and reports.
func Format(d decimal.Decimal) string {
	return RoundHalfUp(d).StringFixed(MinorUnitPlaces)
}
