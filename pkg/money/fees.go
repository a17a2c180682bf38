package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeeSchedule splits a guest payment into gateway processing fee, platform
// fee and the hotel's net share. Rates are percentages.
type FeeSchedule struct {
	ProcessingRate decimal.Decimal
	PlatformRate   decimal.Decimal
}

// FeeSplit is the result of applying a FeeSchedule to a gross amount.
// HotelNet is always Gross − ProcessingFee − PlatformFee.
type FeeSplit struct {
	Gross         decimal.Decimal
	ProcessingFee decimal.Decimal
	PlatformFee   decimal.Decimal
	HotelNet      decimal.Decimal
}

// DefaultFeeSchedule charges no processing fee and a 10% platform fee
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{ProcessingRate: decimal.Zero, PlatformRate: decimal.NewFromInt(10)}
}

// NewFeeSchedule validates the rates. Each must be within 0..100 and the two
// together must not exceed 100, otherwise the hotel net could go negative.
func NewFeeSchedule(processingRate, platformRate decimal.Decimal) (FeeSchedule, error) {
	if processingRate.IsNegative() || processingRate.GreaterThan(hundred) {
		return FeeSchedule{}, fmt.Errorf("processing fee rate %s out of range 0-100", processingRate)
	}
	if platformRate.IsNegative() || platformRate.GreaterThan(hundred) {
		return FeeSchedule{}, fmt.Errorf("platform fee rate %s out of range 0-100", platformRate)
	}
	if processingRate.Add(platformRate).GreaterThan(hundred) {
		return FeeSchedule{}, fmt.Errorf("fee rates %s + %s exceed 100", processingRate, platformRate)
	}
	return FeeSchedule{ProcessingRate: processingRate, PlatformRate: platformRate}, nil
}

// Split applies the schedule. Each fee is rounded half-up to the minor unit
// and the net is derived by subtraction so the identity holds exactly.
func (s FeeSchedule) Split(gross decimal.Decimal) FeeSplit {
	processing := RoundHalfUp(ApplyRate(gross, s.ProcessingRate))
	platform := RoundHalfUp(ApplyRate(gross, s.PlatformRate))
	net := gross.Sub(processing).Sub(platform)
	if net.IsNegative() {
		// Only reachable through rounding on sub-unit amounts.
		platform = platform.Add(net)
		net = decimal.Zero
	}
	return FeeSplit{
		Gross:         gross,
		ProcessingFee: processing,
		PlatformFee:   platform,
		HotelNet:      net,
	}
}
