package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	svcports "github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
)

// Config holds the ledger's business settings
type Config struct {
	Fees           money.FeeSchedule
	Currency       string
	OrderPrefix    string        // shown in PayOS transfer descriptions
	PaymentLinkTTL time.Duration // zero means PayOS default
}

// Service implements svcports.LedgerService
type Service struct {
	db       ports.DBPort
	payments ports.PaymentRepository
	bookings ports.BookingRepository
	qr       ports.QRGenerator // nil when QR payments are disabled
	payos    ports.PayOSClient // nil when PayOS is disabled
	txRefs   *TxRefGenerator
	cfg      Config
	logger   ports.Logger
	now      func() time.Time
}

// NewService creates a new ledger service
func NewService(
	db ports.DBPort,
	payments ports.PaymentRepository,
	bookings ports.BookingRepository,
	qr ports.QRGenerator,
	payos ports.PayOSClient,
	txRefs *TxRefGenerator,
	cfg Config,
	logger ports.Logger,
) *Service {
	return &Service{
		db:       db,
		payments: payments,
		bookings: bookings,
		qr:       qr,
		payos:    payos,
		txRefs:   txRefs,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordPendingPayment stores a pending payment with its fee split
func (s *Service) RecordPendingPayment(ctx context.Context, req svcports.RecordPendingPaymentRequest) (*models.Payment, error) {
	return s.recordPending(ctx, req, svcports.SourceManual)
}

func (s *Service) recordPending(ctx context.Context, req svcports.RecordPendingPaymentRequest, method string) (*models.Payment, error) {
	if req.BookingID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "booking_id", "booking id is required")
	}
	if req.HotelID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "hotel_id", "hotel id is required")
	}
	if !money.IsPositive(req.Amount) {
		return nil, domain.ErrInvalidAmount.
			WithDetail("field", "amount").
			WithDetail("amount", req.Amount.String())
	}

	paid, err := s.payments.HasPaidForBooking(ctx, nil, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("check paid payments for booking: %w", err)
	}
	if paid {
		return nil, domain.ErrDuplicateBookingPayment.WithDetail("booking_id", req.BookingID)
	}

	txRef := req.TxRef
	if txRef == "" {
		txRef = s.txRefs.New()
	}

	split := s.cfg.Fees.Split(req.Amount)
	payment := &models.Payment{
		BookingID:           req.BookingID,
		HotelID:             req.HotelID,
		GrossAmount:         split.Gross,
		ProcessingFeeAmount: split.ProcessingFee,
		PlatformFeeAmount:   split.PlatformFee,
		HotelNetAmount:      split.HotelNet,
		Status:              models.PaymentStatusPending,
		TxRef:               txRef,
		Note:                req.Note,
	}

	if err := s.payments.Create(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	observability.RecordPaymentRecorded(method)
	s.logger.Info("Pending payment recorded",
		ports.String("tx_ref", payment.TxRef),
		ports.Int64("order_code", payment.OrderCode),
		ports.String("booking_id", payment.BookingID),
		ports.String("hotel_id", payment.HotelID),
		ports.Amount("gross", payment.GrossAmount),
		ports.Amount("hotel_net", payment.HotelNetAmount),
	)
	return payment, nil
}

// MarkPaid moves a pending payment to paid exactly once. The row is locked
// and updated conditionally on status = pending, so concurrent deliveries
// of the same confirmation cannot both apply.
func (s *Service) MarkPaid(ctx context.Context, req svcports.MarkPaidRequest) (*models.MarkPaidResult, error) {
	if req.TxRef == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "tx_ref", "transaction reference is required")
	}
	paidAt := s.now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	source := req.Source
	if source == "" {
		source = svcports.SourceManual
	}

	var result *models.MarkPaidResult
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.payments.LockByTxRef(ctx, tx, req.TxRef)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			result = &models.MarkPaidResult{Outcome: models.MarkPaidNoLocalPayment}
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}

		switch current.Status {
		case models.PaymentStatusPaid:
			result = &models.MarkPaidResult{Payment: current, Outcome: models.MarkPaidAlreadyPaid}
			return nil
		case models.PaymentStatusPending:
		default:
			return domain.ErrPaymentInvalidState.
				WithDetail("tx_ref", req.TxRef).
				WithDetail("status", string(current.Status))
		}

		// Checked only once a pending row exists; unknown or settled
		// references are acknowledged whatever amount they carry.
		if req.PaidAmount != nil && !money.IsPositive(*req.PaidAmount) {
			return domain.ErrInvalidAmount.
				WithDetail("field", "amount").
				WithDetail("amount", req.PaidAmount.String())
		}

		params := ports.MarkPaidParams{
			TxRef:        req.TxRef,
			PaidAt:       paidAt,
			ProviderTxID: req.ProviderTxID,
		}
		if req.PaidAmount != nil && !req.PaidAmount.Equal(current.GrossAmount) {
			split := s.cfg.Fees.Split(*req.PaidAmount)
			params.Split = &split
			observability.RecordPaidAmountMismatch()
			s.logger.Warn("Paid amount differs from recorded amount, recomputing fees",
				ports.String("tx_ref", req.TxRef),
				ports.Amount("recorded_gross", current.GrossAmount),
				ports.Amount("paid_amount", *req.PaidAmount),
			)
		}

		updated, err := s.payments.MarkPaidIfPending(ctx, tx, params)
		if err != nil {
			return fmt.Errorf("mark payment paid: %w", err)
		}
		if updated == nil {
			// Only reachable if the row changed after the lock, e.g. under a
			// weaker isolation setup; report what is stored now.
			latest, err := s.payments.GetByTxRef(ctx, tx, req.TxRef)
			if err != nil {
				return fmt.Errorf("reload payment: %w", err)
			}
			result = &models.MarkPaidResult{Payment: latest, Outcome: models.MarkPaidAlreadyPaid}
			return nil
		}
		result = &models.MarkPaidResult{Payment: updated, Outcome: models.MarkPaidApplied}

		s.markBookingPaid(ctx, tx, updated)
		return nil
	})
	if err != nil {
		observability.RecordPaymentConfirmation(source, "error", 0, s.cfg.Currency)
		return nil, err
	}

	s.logConfirmation(req, source, result)
	return result, nil
}

// markBookingPaid flags the booking as paid under a savepoint. The flag is
// display state owned by the booking module, so a failure is logged and
// rolled back on its own without undoing the ledger update.
func (s *Service) markBookingPaid(ctx context.Context, tx pgx.Tx, payment *models.Payment) {
	err := s.db.WithSavepoint(ctx, tx, func(ctx context.Context, sp pgx.Tx) error {
		return s.bookings.SetPaymentStatus(ctx, sp, payment.BookingID, models.BookingPaid)
	})
	if err != nil {
		observability.RecordBookingUpdateFailure()
		s.logger.Error("Failed to mark booking paid, ledger update kept",
			ports.String("booking_id", payment.BookingID),
			ports.String("tx_ref", payment.TxRef),
			ports.Err(err),
		)
	}
}

func (s *Service) logConfirmation(req svcports.MarkPaidRequest, source string, result *models.MarkPaidResult) {
	var gross float64
	if result.Payment != nil {
		gross = result.Payment.GrossAmount.InexactFloat64()
	}
	if result.Outcome != models.MarkPaidApplied {
		gross = 0
	}
	observability.RecordPaymentConfirmation(source, string(result.Outcome), gross, s.cfg.Currency)

	switch result.Outcome {
	case models.MarkPaidApplied:
		s.logger.Info("Payment marked paid",
			ports.String("tx_ref", req.TxRef),
			ports.String("source", source),
			ports.String("provider_tx_id", req.ProviderTxID),
			ports.Amount("gross", result.Payment.GrossAmount),
			ports.Amount("hotel_net", result.Payment.HotelNetAmount),
		)
	case models.MarkPaidAlreadyPaid:
		s.logger.Info("Payment already paid, confirmation ignored",
			ports.String("tx_ref", req.TxRef),
			ports.String("source", source),
		)
	case models.MarkPaidNoLocalPayment:
		s.logger.Warn("Confirmation for unknown transaction reference",
			ports.String("tx_ref", req.TxRef),
			ports.String("source", source),
			ports.String("provider_tx_id", req.ProviderTxID),
		)
	}
}

// CreateBookingPayment records a pending payment for the booking's total and
// asks the selected gateway for payment instructions. When the gateway call
// fails the pending payment stays on record and the error is returned.
func (s *Service) CreateBookingPayment(ctx context.Context, req svcports.CreateBookingPaymentRequest) (*models.BookingPaymentInstructions, error) {
	if req.BookingID == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "booking_id", "booking id is required")
	}
	method := req.Method
	if method == "" {
		method = models.PaymentMethodQR
	}
	switch {
	case method == models.PaymentMethodQR && s.qr == nil,
		method == models.PaymentMethodPayOS && s.payos == nil:
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "method", fmt.Sprintf("payment method %s is not enabled", method))
	case method != models.PaymentMethodQR && method != models.PaymentMethodPayOS:
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "method", fmt.Sprintf("unknown payment method %q", method))
	}

	booking, err := s.bookings.GetByID(ctx, nil, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.BookingPaid {
		return nil, domain.ErrDuplicateBookingPayment.WithDetail("booking_id", booking.ID)
	}

	payment, err := s.recordPending(ctx, svcports.RecordPendingPaymentRequest{
		BookingID: booking.ID,
		HotelID:   booking.HotelID,
		Amount:    booking.TotalPrice,
		Note:      fmt.Sprintf("booking %s via %s", booking.ID, method),
	}, string(method))
	if err != nil {
		return nil, err
	}

	out := &models.BookingPaymentInstructions{
		PaymentID: payment.ID,
		TxRef:     payment.TxRef,
		OrderCode: payment.OrderCode,
		Amount:    payment.GrossAmount,
		Method:    method,
	}

	switch method {
	case models.PaymentMethodQR:
		qr, err := s.qr.GenerateQR(ctx, ports.QRRequest{
			TxRef:       payment.TxRef,
			Amount:      payment.GrossAmount,
			Description: "Booking " + shortID(booking.ID),
		})
		if err != nil {
			s.logGatewayFailure("generate QR", payment, err)
			return nil, err
		}
		out.QRCode = qr.QRCode
		out.QRImage = qr.QRImage

	case models.PaymentMethodPayOS:
		linkReq := ports.PaymentLinkRequest{
			OrderCode:   payment.OrderCode,
			Amount:      payment.GrossAmount,
			Description: fmt.Sprintf("%s%d", s.cfg.OrderPrefix, payment.OrderCode),
			ReturnURL:   req.ReturnURL,
			CancelURL:   req.CancelURL,
		}
		if s.cfg.PaymentLinkTTL > 0 {
			expires := s.now().Add(s.cfg.PaymentLinkTTL)
			linkReq.ExpiresAt = &expires
		}
		link, err := s.payos.CreatePaymentLink(ctx, linkReq)
		if err != nil {
			s.logGatewayFailure("create payment link", payment, err)
			return nil, err
		}
		out.CheckoutURL = link.CheckoutURL
		out.QRCode = link.QRCode
	}

	return out, nil
}

func (s *Service) logGatewayFailure(op string, payment *models.Payment, err error) {
	s.logger.Error("Gateway call failed, payment left pending",
		ports.String("operation", op),
		ports.String("tx_ref", payment.TxRef),
		ports.Int64("order_code", payment.OrderCode),
		ports.Err(err),
	)
}

// GetPayment returns the payment for txRef
func (s *Service) GetPayment(ctx context.Context, txRef string) (*models.Payment, error) {
	if txRef == "" {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "tx_ref", "transaction reference is required")
	}
	return s.payments.GetByTxRef(ctx, nil, txRef)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

var _ svcports.LedgerService = (*Service)(nil)
