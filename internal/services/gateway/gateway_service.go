package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
)

// payOSSuccessCode marks a successful transfer in PayOS webhooks
const payOSSuccessCode = "00"

// Service implements svcports.GatewayService
type Service struct {
	ledger   svcports.LedgerService
	payments ports.PaymentRepository
	payos    ports.PayOSClient // nil when PayOS is disabled
	logger   ports.Logger
}

// NewService creates a new gateway service
func NewService(ledger svcports.LedgerService, payments ports.PaymentRepository, payos ports.PayOSClient, logger ports.Logger) *Service {
	return &Service{
		ledger:   ledger,
		payments: payments,
		payos:    payos,
		logger:   logger,
	}
}

// HandleWebhook applies a provider-neutral confirmation. Repeated and
// unknown confirmations succeed so providers stop redelivering.
func (s *Service) HandleWebhook(ctx context.Context, event svcports.WebhookEvent) (*models.MarkPaidResult, error) {
	if event.TxRef == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "tx_ref", "transaction reference is required")
	}
	return s.ledger.MarkPaid(ctx, svcports.MarkPaidRequest{
		TxRef:        event.TxRef,
		PaidAmount:   event.Amount,
		PaidAt:       event.PaidAt,
		ProviderTxID: event.ProviderTxID,
		Source:       svcports.SourceWebhook,
	})
}

// HandlePayOSWebhook verifies a signed PayOS notification and applies it
func (s *Service) HandlePayOSWebhook(ctx context.Context, payload *ports.PayOSWebhookPayload) (*models.MarkPaidResult, error) {
	if s.payos == nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "provider", "payos is not enabled")
	}
	if payload == nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "data", "webhook payload is required")
	}

	data, err := s.payos.VerifyWebhook(ctx, payload)
	if err != nil {
		s.logger.Warn("PayOS webhook rejected",
			ports.String("code", payload.Code),
			ports.Err(err),
		)
		return nil, err
	}

	if payload.Code != payOSSuccessCode || (data.Code != "" && data.Code != payOSSuccessCode) {
		s.logger.Info("PayOS webhook is not a successful payment, ignored",
			ports.Int64("order_code", data.OrderCode),
			ports.String("code", payload.Code),
			ports.String("data_code", data.Code),
		)
		return nil, nil
	}

	payment, err := s.payments.GetByOrderCode(ctx, nil, data.OrderCode)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		// PayOS sends a test event with a made-up order code when the
		// webhook URL is registered
		s.logger.Warn("PayOS webhook for unknown order code",
			ports.Int64("order_code", data.OrderCode),
			ports.String("reference", data.Reference),
		)
		return &models.MarkPaidResult{Outcome: models.MarkPaidNoLocalPayment}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up payment by order code: %w", err)
	}

	req := svcports.MarkPaidRequest{
		TxRef:        payment.TxRef,
		ProviderTxID: data.Reference,
		Source:       svcports.SourcePayOSWebhook,
	}
	if data.Amount > 0 {
		amount := decimal.NewFromInt(data.Amount)
		req.PaidAmount = &amount
	}
	if paidAt, ok := ports.ParsePayOSTime(data.TransactionDateTime); ok {
		req.PaidAt = &paidAt
	}
	return s.ledger.MarkPaid(ctx, req)
}

// PollOrderStatus asks PayOS for an order's status and settles a still
// pending local payment when the gateway reports it paid
func (s *Service) PollOrderStatus(ctx context.Context, orderCode int64) (*svcports.PollResult, error) {
	if s.payos == nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "provider", "payos is not enabled")
	}
	if orderCode <= 0 {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "order_code", "order code must be positive")
	}

	payment, err := s.payments.GetByOrderCode(ctx, nil, orderCode)
	if err != nil {
		return nil, err
	}

	status, err := s.payos.GetPaymentStatus(ctx, orderCode)
	if err != nil {
		return nil, err
	}

	result := &svcports.PollResult{
		OrderCode:     orderCode,
		TxRef:         payment.TxRef,
		GatewayStatus: status.Status,
		Payment:       payment,
	}
	if status.Status != ports.GatewayOrderPaid {
		s.logger.Debug("PayOS order not paid yet",
			ports.Int64("order_code", orderCode),
			ports.String("gateway_status", status.Status),
		)
		return result, nil
	}
	if payment.IsPaid() {
		result.Outcome = models.MarkPaidAlreadyPaid
		return result, nil
	}

	req := svcports.MarkPaidRequest{
		TxRef:        payment.TxRef,
		PaidAt:       status.PaidAt,
		ProviderTxID: status.Reference,
		Source:       svcports.SourcePoll,
	}
	switch {
	case status.AmountPaid.IsPositive():
		paid := status.AmountPaid
		req.PaidAmount = &paid
	case status.Amount.IsPositive():
		paid := status.Amount
		req.PaidAmount = &paid
	}

	marked, err := s.ledger.MarkPaid(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Outcome = marked.Outcome
	if marked.Payment != nil {
		result.Payment = marked.Payment
	}
	return result, nil
}

var _ svcports.GatewayService = (*Service)(nil)
