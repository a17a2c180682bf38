package fixtures

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
)

// NewContract returns an open-ended active contract for hotelID.
func NewContract(id, hotelID string, rate decimal.Decimal, createdAt time.Time) *models.Contract {
	return &models.Contract{
		ID:             id,
		HotelID:        hotelID,
		CommissionRate: rate,
		Status:         models.ContractStatusActive,
		StartDate:      Date(2024, time.January, 1),
		CreatedAt:      createdAt,
	}
}

// NewBankAccount returns the active default account for hotelID.
func NewBankAccount(hotelID string) *models.BankAccount {
	return &models.BankAccount{
		ID:            "bank-" + hotelID,
		HotelID:       hotelID,
		HolderName:    "NGUYEN VAN A",
		AccountNumber: "0011001234567",
		BankName:      "Vietcombank",
		BranchName:    "Ho Chi Minh",
		Status:        models.BankAccountStatusActive,
		IsDefault:     true,
	}
}
