package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus represents where a payout is in the disbursement flow
type PayoutStatus string

const (
	PayoutStatusScheduled PayoutStatus = "scheduled"
	PayoutStatusProcessed PayoutStatus = "processed"
	PayoutStatusFailed    PayoutStatus = "failed"
)

// Payout is a scheduled disbursement of one hotel's net revenue for one
// business day. At most one payout exists per (HotelID, CoverDate).
type Payout struct {
	ID             string
	HotelID        string
	CoverDate      time.Time // UTC midnight of the business date
	TotalNetAmount decimal.Decimal
	Status         PayoutStatus
	Note           *PayoutNote
	CreatedAt      time.Time
}

// PayoutNote is the JSON document stored alongside each payout. Contract and
// bank account are snapshots taken at calculation time, not live references.
type PayoutNote struct {
	Calculation        CommissionBreakdown `json:"calculation"`
	BankAccount        BankAccountSnapshot `json:"bank_account"`
	Contract           ContractSnapshot    `json:"contract"`
	SupersededPayoutID string              `json:"superseded_payout_id,omitempty"`
	CalculatedAt       time.Time           `json:"calculated_at"`
}

// CommissionBreakdown is the output of the commission calculator
type CommissionBreakdown struct {
	HotelNetRevenue  decimal.Decimal `json:"hotel_net_revenue"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	PayoutAmount     decimal.Decimal `json:"payout_amount"`
	LegacyRateUsed   bool            `json:"legacy_rate_used,omitempty"`
}

// BankAccountSnapshot freezes the destination account at calculation time
type BankAccountSnapshot struct {
	ID            string `json:"id"`
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name,omitempty"`
}

// ContractSnapshot freezes the contract terms used for the calculation
type ContractSnapshot struct {
	ID             string          `json:"id"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Status         ContractStatus  `json:"status"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date,omitempty"`
}

// SnapshotBankAccount copies the fields a payout needs from a live account
func SnapshotBankAccount(b *BankAccount) BankAccountSnapshot {
	return BankAccountSnapshot{
		ID:            b.ID,
		HolderName:    b.HolderName,
		AccountNumber: b.AccountNumber,
		BankName:      b.BankName,
		BranchName:    b.BranchName,
	}
}

// SnapshotContract copies the terms a payout needs from a live contract
func SnapshotContract(c *Contract) ContractSnapshot {
	s := ContractSnapshot{
		ID:             c.ID,
		CommissionRate: c.CommissionRate,
		Status:         c.Status,
		StartDate:      dateKey(c.StartDate),
	}
	if c.EndDate != nil {
		s.EndDate = dateKey(*c.EndDate)
	}
	return s
}

// PayoutPreview is what CreatePayout would write, without writing it
type PayoutPreview struct {
	HotelID          string
	CoverDate        time.Time
	Calculation      CommissionBreakdown
	BankAccount      BankAccountSnapshot
	Contract         ContractSnapshot
	WouldSupersedeID string
}

// PayoutBatchResult is the per-hotel outcome inside a daily batch
type PayoutBatchResult struct {
	HotelID  string          `json:"hotel_id"`
	Success  bool            `json:"success"`
	PayoutID string          `json:"payout_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Error    string          `json:"error,omitempty"`
}

// PayoutBatchSummary summarizes one ProcessDailyPayouts run
type PayoutBatchSummary struct {
	TargetDate     time.Time           `json:"target_date"`
	TotalProcessed int                 `json:"total_processed"`
	Successful     int                 `json:"successful"`
	Failed         int                 `json:"failed"`
	Results        []PayoutBatchResult `json:"results"`
}
