package models

// BankAccountStatus represents whether an account may receive payouts
type BankAccountStatus string

const (
	BankAccountStatusActive   BankAccountStatus = "active"
	BankAccountStatusInactive BankAccountStatus = "inactive"
)

// BankAccount is a hotel owner's payout destination
type BankAccount struct {
	ID            string
	HotelID       string
	HolderName    string
	AccountNumber string
	BankName      string
	BranchName    string
	Status        BankAccountStatus
	IsDefault     bool
}

// UsableForPayout reports whether payouts may be sent to this account
func (b *BankAccount) UsableForPayout() bool {
	return b.Status == BankAccountStatusActive && b.IsDefault
}

// MaskedAccountNumber keeps the last four digits for logs and snapshots shown in the UI
func (b *BankAccount) MaskedAccountNumber() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return b.AccountNumber
	}
	masked := make([]byte, n)
	for i := 0; i < n-4; i++ {
		masked[i] = '*'
	}
	copy(masked[n-4:], b.AccountNumber[n-4:])
	return string(masked)
}
