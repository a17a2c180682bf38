package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	domainports "github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	"github.com/kevin07696/hotel-payout-service/internal/services/ports"
)

// MockLedgerService mocks ports.LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordPendingPayment(ctx context.Context, req ports.RecordPendingPaymentRequest) (*models.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockLedgerService) MarkPaid(ctx context.Context, req ports.MarkPaidRequest) (*models.MarkPaidResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarkPaidResult), args.Error(1)
}

func (m *MockLedgerService) CreateBookingPayment(ctx context.Context, req ports.CreateBookingPaymentRequest) (*models.BookingPaymentInstructions, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingPaymentInstructions), args.Error(1)
}

func (m *MockLedgerService) GetPayment(ctx context.Context, txRef string) (*models.Payment, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// MockRevenueService mocks ports.RevenueService
type MockRevenueService struct {
	mock.Mock
}

func (m *MockRevenueService) GetDailyRevenue(ctx context.Context, q ports.DailyRevenueQuery) ([]models.DailyHotelRevenue, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyHotelRevenue), args.Error(1)
}

func (m *MockRevenueService) EarliestLatestPaidDates(ctx context.Context, hotelID string) (*models.PaidDateRange, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaidDateRange), args.Error(1)
}

// MockReportService mocks ports.ReportService. The Run hook may write to w.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) WriteDailyRevenueXLSX(ctx context.Context, q ports.DailyRevenueQuery, w io.Writer) error {
	args := m.Called(ctx, q, w)
	return args.Error(0)
}

// MockPayoutService mocks ports.PayoutService
type MockPayoutService struct {
	mock.Mock
}

func (m *MockPayoutService) CreatePayout(ctx context.Context, req ports.CreatePayoutRequest) (*models.Payout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *MockPayoutService) PreviewPayout(ctx context.Context, req ports.CreatePayoutRequest) (*models.PayoutPreview, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutPreview), args.Error(1)
}

func (m *MockPayoutService) ProcessDailyPayouts(ctx context.Context, targetDate time.Time) (*models.PayoutBatchSummary, error) {
	args := m.Called(ctx, targetDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutBatchSummary), args.Error(1)
}

func (m *MockPayoutService) ListPayouts(ctx context.Context, hotelID string, from, to time.Time) ([]*models.Payout, error) {
	args := m.Called(ctx, hotelID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payout), args.Error(1)
}

func (m *MockPayoutService) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

// MockGatewayService mocks ports.GatewayService
type MockGatewayService struct {
	mock.Mock
}

func (m *MockGatewayService) HandleWebhook(ctx context.Context, event ports.WebhookEvent) (*models.MarkPaidResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarkPaidResult), args.Error(1)
}

func (m *MockGatewayService) HandlePayOSWebhook(ctx context.Context, payload *domainports.PayOSWebhookPayload) (*models.MarkPaidResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarkPaidResult), args.Error(1)
}

func (m *MockGatewayService) PollOrderStatus(ctx context.Context, orderCode int64) (*ports.PollResult, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PollResult), args.Error(1)
}
