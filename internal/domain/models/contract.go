package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle of a commission contract
type ContractStatus string

const (
	ContractStatusDraft    ContractStatus = "draft"
	ContractStatusApproved ContractStatus = "approved"
	ContractStatusActive   ContractStatus = "active"
	ContractStatusExpired  ContractStatus = "expired"
	ContractStatusRejected ContractStatus = "rejected"
)

// PayoutEligibleContractStatuses are the statuses a contract may have to be
// considered when resolving the commission for a payout.
var PayoutEligibleContractStatuses = []ContractStatus{
	ContractStatusApproved,
	ContractStatusActive,
	ContractStatusDraft,
}

// Contract is a commission agreement between the platform and a hotel.
// CommissionRate is a percentage; values above 100 come from the legacy
// format that stored an absolute VND amount.
type Contract struct {
	ID             string
	HotelID        string
	CommissionRate decimal.Decimal
	Status         ContractStatus
	StartDate      time.Time
	EndDate        *time.Time // nil = open-ended
	SignedDate     *time.Time
	CreatedAt      time.Time
}

// Covers reports whether the contract's date range includes date.
// Dates are compared as calendar days.
func (c *Contract) Covers(date time.Time) bool {
	day := dateKey(date)
	if dateKey(c.StartDate) > day {
		return false
	}
	return c.EndDate == nil || dateKey(*c.EndDate) >= day
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
