package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// MockQRGenerator mocks ports.QRGenerator
type MockQRGenerator struct {
	mock.Mock
}

func (m *MockQRGenerator) GenerateQR(ctx context.Context, req ports.QRRequest) (*ports.QRResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.QRResult), args.Error(1)
}

// MockPayOSClient mocks ports.PayOSClient
type MockPayOSClient struct {
	mock.Mock
}

func (m *MockPayOSClient) CreatePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (*ports.PaymentLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PaymentLink), args.Error(1)
}

func (m *MockPayOSClient) GetPaymentStatus(ctx context.Context, orderCode int64) (*ports.GatewayOrderStatus, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.GatewayOrderStatus), args.Error(1)
}

func (m *MockPayOSClient) VerifyWebhook(ctx context.Context, payload *ports.PayOSWebhookPayload) (*ports.PayOSWebhookData, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PayOSWebhookData), args.Error(1)
}

// MockLocker mocks ports.Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (ports.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Lock), args.Error(1)
}

// MockLock mocks ports.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
