package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// MockPaymentRepository mocks ports.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, db ports.DBTX, payment *models.Payment) error {
	args := m.Called(ctx, db, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByTxRef(ctx context.Context, db ports.DBTX, txRef string) (*models.Payment, error) {
	args := m.Called(ctx, db, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) LockByTxRef(ctx context.Context, db ports.DBTX, txRef string) (*models.Payment, error) {
	args := m.Called(ctx, db, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByOrderCode(ctx context.Context, db ports.DBTX, orderCode int64) (*models.Payment, error) {
	args := m.Called(ctx, db, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) HasPaidForBooking(ctx context.Context, db ports.DBTX, bookingID string) (bool, error) {
	args := m.Called(ctx, db, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaidIfPending(ctx context.Context, db ports.DBTX, params ports.MarkPaidParams) (*models.Payment, error) {
	args := m.Called(ctx, db, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// MockBookingRepository mocks ports.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, db ports.DBTX, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, db, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) SetPaymentStatus(ctx context.Context, db ports.DBTX, bookingID string, status models.BookingPaymentStatus) error {
	args := m.Called(ctx, db, bookingID, status)
	return args.Error(0)
}

// MockRevenueRepository mocks ports.RevenueRepository
type MockRevenueRepository struct {
	mock.Mock
}

func (m *MockRevenueRepository) ListPaidPayments(ctx context.Context, db ports.DBTX, hotelID *string, fromUTC, toUTC time.Time) ([]models.PaidPaymentRow, error) {
	args := m.Called(ctx, db, hotelID, fromUTC, toUTC)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaidPaymentRow), args.Error(1)
}

func (m *MockRevenueRepository) PaidDateRange(ctx context.Context, db ports.DBTX, hotelID string) (*models.PaidDateRange, error) {
	args := m.Called(ctx, db, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaidDateRange), args.Error(1)
}

// MockContractRepository mocks ports.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) ListCandidates(ctx context.Context, db ports.DBTX, hotelID string, date time.Time, statuses []models.ContractStatus) ([]*models.Contract, error) {
	args := m.Called(ctx, db, hotelID, date, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contract), args.Error(1)
}

// MockBankAccountRepository mocks ports.BankAccountRepository
type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) GetDefaultActive(ctx context.Context, db ports.DBTX, hotelID string) (*models.BankAccount, error) {
	args := m.Called(ctx, db, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankAccount), args.Error(1)
}

// MockPayoutRepository mocks ports.PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) LockHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) error {
	args := m.Called(ctx, db, hotelID, coverDate)
	return args.Error(0)
}

func (m *MockPayoutRepository) DeleteByHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) ([]string, error) {
	args := m.Called(ctx, db, hotelID, coverDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPayoutRepository) Create(ctx context.Context, db ports.DBTX, payout *models.Payout) error {
	args := m.Called(ctx, db, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Payout, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *MockPayoutRepository) GetByHotelDate(ctx context.Context, db ports.DBTX, hotelID string, coverDate time.Time) (*models.Payout, error) {
	args := m.Called(ctx, db, hotelID, coverDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *MockPayoutRepository) ListByHotel(ctx context.Context, db ports.DBTX, hotelID string, from, to time.Time) ([]*models.Payout, error) {
	args := m.Called(ctx, db, hotelID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payout), args.Error(1)
}
