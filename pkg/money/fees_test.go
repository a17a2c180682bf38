package money_test

import (
	"testing"

	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeeSchedule_Validation(t *testing.T) {
	_, err := money.NewFeeSchedule(d("-1"), d("10"))
	assert.Error(t, err)

	_, err = money.NewFeeSchedule(d("0"), d("101"))
	assert.Error(t, err)

	_, err = money.NewFeeSchedule(d("60"), d("50"))
	assert.Error(t, err)

	_, err = money.NewFeeSchedule(d("1.1"), d("10"))
	assert.NoError(t, err)
}

func TestFeeSchedule_Split(t *testing.T) {
	schedule, err := money.NewFeeSchedule(d("0"), d("10"))
	require.NoError(t, err)

	split := schedule.Split(d("1000000"))
	assert.True(t, split.ProcessingFee.IsZero())
	assert.True(t, split.PlatformFee.Equal(d("100000")))
	assert.True(t, split.HotelNet.Equal(d("900000")))
}

func TestFeeSchedule_SplitIdentityHolds(t *testing.T) {
	schedule, err := money.NewFeeSchedule(d("1.1"), d("7.35"))
	require.NoError(t, err)

	for _, gross := range []string{"1", "3", "99", "150001", "2999999", "123456789"} {
		split := schedule.Split(d(gross))
		assert.True(t, split.HotelNet.Equal(split.Gross.Sub(split.ProcessingFee).Sub(split.PlatformFee)), gross)
		assert.False(t, split.HotelNet.IsNegative(), gross)
	}
}

func TestFeeSchedule_FullTakeNeverNegative(t *testing.T) {
	schedule, err := money.NewFeeSchedule(d("50"), d("50"))
	require.NoError(t, err)

	split := schedule.Split(d("3"))
	assert.False(t, split.HotelNet.IsNegative())
	assert.True(t, split.HotelNet.Equal(split.Gross.Sub(split.ProcessingFee).Sub(split.PlatformFee)))
}
