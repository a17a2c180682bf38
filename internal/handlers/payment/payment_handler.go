package payment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	domainports "github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	"github.com/kevin07696/hotel-payout-service/internal/handlers"
	"github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

// Handler serves booking payment creation, payment lookup and gateway
// confirmations
type Handler struct {
	ledger    ports.LedgerService
	gateway   ports.GatewayService
	timeouts  *resilience.TimeoutConfig
	validator *handlers.Validator
	logger    *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(
	ledger ports.LedgerService,
	gateway ports.GatewayService,
	timeouts *resilience.TimeoutConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		ledger:    ledger,
		gateway:   gateway,
		timeouts:  timeouts,
		validator: handlers.NewValidator(),
		logger:    logger,
	}
}

// Register mounts the payment routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/bookings/{bookingID}/payments", h.CreateBookingPayment)
	mux.HandleFunc("GET /api/v1/payments/{txRef}", h.GetPayment)
	mux.HandleFunc("POST /api/v1/payments/webhook", h.Webhook)
	mux.HandleFunc("POST /api/v1/payments/payos/webhook", h.PayOSWebhook)
	mux.HandleFunc("POST /api/v1/payments/payos/{orderCode}/sync", h.SyncPayOSOrder)
}

// CreateBookingPaymentRequest is the optional body of a payment creation
type CreateBookingPaymentRequest struct {
	Method    string `json:"method" validate:"omitempty,oneof=qr payos"`
	ReturnURL string `json:"return_url" validate:"omitempty,url"`
	CancelURL string `json:"cancel_url" validate:"omitempty,url"`
}

// BookingPaymentResponse carries what the guest needs to pay
type BookingPaymentResponse struct {
	Success     bool   `json:"success"`
	PaymentID   string `json:"payment_id"`
	TxRef       string `json:"tx_ref"`
	OrderCode   int64  `json:"order_code"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	QRImage     string `json:"qr_image,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// PaymentResponse is the API view of a stored payment
type PaymentResponse struct {
	ID                  string  `json:"id"`
	BookingID           string  `json:"booking_id"`
	HotelID             string  `json:"hotel_id"`
	TxRef               string  `json:"tx_ref"`
	OrderCode           int64   `json:"order_code"`
	Status              string  `json:"status"`
	GrossAmount         string  `json:"gross_amount"`
	ProcessingFeeAmount string  `json:"processing_fee_amount"`
	PlatformFeeAmount   string  `json:"platform_fee_amount"`
	HotelNetAmount      string  `json:"hotel_net_amount"`
	ProviderTxID        string  `json:"provider_tx_id,omitempty"`
	PaidAt              *string `json:"paid_at,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

// WebhookRequest is the provider-neutral confirmation body
type WebhookRequest struct {
	TxRef        string           `json:"txRef" validate:"required"`
	Amount       *decimal.Decimal `json:"amount"`
	PaidAt       *time.Time       `json:"paidAt"`
	ProviderTxID string           `json:"providerTxId"`
}

// WebhookResponse acknowledges a confirmation
type WebhookResponse struct {
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome,omitempty"`
	TxRef   string `json:"tx_ref,omitempty"`
}

// PollResponse reports a status pull
type PollResponse struct {
	OrderCode     int64            `json:"order_code"`
	TxRef         string           `json:"tx_ref"`
	GatewayStatus string           `json:"gateway_status"`
	Outcome       string           `json:"outcome,omitempty"`
	Payment       *PaymentResponse `json:"payment,omitempty"`
}

// CreateBookingPayment handles POST /api/v1/bookings/{bookingID}/payments
func (h *Handler) CreateBookingPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	var req CreateBookingPaymentRequest
	if r.ContentLength != 0 {
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			handlers.WriteError(w, h.logger, err)
			return
		}
	}

	out, err := h.ledger.CreateBookingPayment(ctx, ports.CreateBookingPaymentRequest{
		BookingID: r.PathValue("bookingID"),
		Method:    models.PaymentMethod(req.Method),
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	})
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, h.logger, http.StatusCreated, BookingPaymentResponse{
		Success:     true,
		PaymentID:   out.PaymentID,
		TxRef:       out.TxRef,
		OrderCode:   out.OrderCode,
		Amount:      money.Format(out.Amount),
		Method:      string(out.Method),
		QRImage:     out.QRImage,
		QRCode:      out.QRCode,
		CheckoutURL: out.CheckoutURL,
	})
}

// GetPayment handles GET /api/v1/payments/{txRef}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	payment, err := h.ledger.GetPayment(ctx, r.PathValue("txRef"))
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, toPaymentResponse(payment))
}

// Webhook handles POST /api/v1/payments/webhook. Gateways redeliver on any
// non-2xx, so everything except a malformed request or a storage failure is
// acknowledged.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.WebhookContext(r.Context())
	defer cancel()

	var req WebhookRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("Malformed payment webhook", zap.Error(err))
		h.writeWebhookError(w, err)
		return
	}

	result, err := h.gateway.HandleWebhook(ctx, ports.WebhookEvent{
		TxRef:        req.TxRef,
		Amount:       req.Amount,
		PaidAt:       req.PaidAt,
		ProviderTxID: req.ProviderTxID,
	})
	h.acknowledge(w, req.TxRef, result, err)
}

// PayOSWebhook handles POST /api/v1/payments/payos/webhook
func (h *Handler) PayOSWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.WebhookContext(r.Context())
	defer cancel()

	var payload domainports.PayOSWebhookPayload
	if err := h.validator.DecodeJSON(r, &payload); err != nil {
		h.logger.Warn("Malformed PayOS webhook", zap.Error(err))
		h.writeWebhookError(w, err)
		return
	}

	result, err := h.gateway.HandlePayOSWebhook(ctx, &payload)
	if domain.IsDomainError(err, domain.ErrorCodeGatewaySignatureInvalid) {
		h.logger.Warn("PayOS webhook signature rejected", zap.String("remote_addr", r.RemoteAddr))
		h.writeWebhookError(w, err)
		return
	}
	h.acknowledge(w, "", result, err)
}

func (h *Handler) acknowledge(w http.ResponseWriter, txRef string, result *models.MarkPaidResult, err error) {
	if err != nil {
		status := handlers.HTTPStatus(err)
		if status == http.StatusBadRequest || status == http.StatusInternalServerError {
			h.writeWebhookError(w, err)
			return
		}
		h.logger.Warn("Payment confirmation not applied, acknowledging",
			zap.String("tx_ref", txRef),
			zap.Error(err),
		)
		handlers.WriteJSON(w, h.logger, http.StatusOK, WebhookResponse{OK: true, Outcome: "rejected", TxRef: txRef})
		return
	}

	resp := WebhookResponse{OK: true, TxRef: txRef, Outcome: "ignored"}
	if result != nil {
		resp.Outcome = string(result.Outcome)
		if result.Payment != nil {
			resp.TxRef = result.Payment.TxRef
		}
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) writeWebhookError(w http.ResponseWriter, err error) {
	status := handlers.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Payment webhook failed", zap.Error(err))
	}
	handlers.WriteJSON(w, h.logger, status, WebhookResponse{OK: false})
}

// SyncPayOSOrder handles POST /api/v1/payments/payos/{orderCode}/sync
func (h *Handler) SyncPayOSOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	orderCode, err := strconv.ParseInt(r.PathValue("orderCode"), 10, 64)
	if err != nil {
		handlers.WriteError(w, h.logger, domain.NewValidationError(domain.ErrorCodeValidationFailed, "order_code", "order code must be an integer"))
		return
	}

	result, err := h.gateway.PollOrderStatus(ctx, orderCode)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	resp := PollResponse{
		OrderCode:     result.OrderCode,
		TxRef:         result.TxRef,
		GatewayStatus: result.GatewayStatus,
		Outcome:       string(result.Outcome),
	}
	if result.Payment != nil {
		p := toPaymentResponse(result.Payment)
		resp.Payment = &p
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, resp)
}

func toPaymentResponse(p *models.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:                  p.ID,
		BookingID:           p.BookingID,
		HotelID:             p.HotelID,
		TxRef:               p.TxRef,
		OrderCode:           p.OrderCode,
		Status:              string(p.Status),
		GrossAmount:         money.Format(p.GrossAmount),
		ProcessingFeeAmount: money.Format(p.ProcessingFeeAmount),
		PlatformFeeAmount:   money.Format(p.PlatformFeeAmount),
		HotelNetAmount:      money.Format(p.HotelNetAmount),
		ProviderTxID:        p.ProviderTxID,
		CreatedAt:           p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}
