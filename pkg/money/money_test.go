package money_test

import (
	"testing"

	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "1"},
		{"1.4999", "1"},
		{"2.5", "3"},
		{"-2.5", "-2"},
		{"999999.5", "1000000"},
		{"100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, money.RoundHalfUp(d(tt.in)).Equal(d(tt.want)),
				"RoundHalfUp(%s) = %s, want %s", tt.in, money.RoundHalfUp(d(tt.in)), tt.want)
		})
	}
}

func TestRoundHalfUpPlaces(t *testing.T) {
	assert.True(t, money.RoundHalfUpPlaces(d("1.005"), 2).Equal(d("1.01")))
	assert.True(t, money.RoundHalfUpPlaces(d("1.004"), 2).Equal(d("1")))
}

func TestNetFromGross(t *testing.T) {
	assert.True(t, money.NetFromGross(d("1000000"), d("10")).Equal(d("900000")))
	assert.True(t, money.NetFromGross(d("1000000"), d("0")).Equal(d("1000000")))
}

func TestGrossFromNet_RoundTripWithinOneMinorUnit(t *testing.T) {
	nets := []string{"900000", "1", "123457", "999999", "3333333", "7"}
	rates := []string{"0", "1", "10", "12", "12.5", "33.33", "99"}

	for _, n := range nets {
		for _, r := range rates {
			net := d(n)
			rate := d(r)

			gross, err := money.GrossFromNet(net, rate)
			require.NoError(t, err)

			rounded := money.RoundHalfUp(gross)
			back := money.NetFromGross(rounded, rate)
			diff := back.Sub(net).Abs()
			assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
				"net=%s rate=%s gross=%s back=%s", n, r, rounded, back)
		}
	}
}

func TestGrossFromNet_ZeroDivisor(t *testing.T) {
	_, err := money.GrossFromNet(d("100"), d("100"))
	assert.ErrorIs(t, err, money.ErrZeroDivisor)
}

func TestParseAmount(t *testing.T) {
	got, err := money.ParseAmount("1,000,000")
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1000000")))

	_, err = money.ParseAmount("")
	assert.Error(t, err)

	_, err = money.ParseAmount("abc")
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	assert.True(t, money.Sum(d("1"), d("2.5"), d("3")).Equal(d("6.5")))
	assert.True(t, money.Sum().IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1000000", money.Format(d("999999.5")))
}
