package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	domainports "github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	"github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/fixtures"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/mocks"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

func setupHandler(t *testing.T) (*http.ServeMux, *mocks.MockLedgerService, *mocks.MockGatewayService) {
	ledger := new(mocks.MockLedgerService)
	gateway := new(mocks.MockGatewayService)
	h := NewHandler(ledger, gateway, resilience.TestTimeoutConfig(), zaptest.NewLogger(t))
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, ledger, gateway
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateBookingPayment_Success(t *testing.T) {
	mux, ledger, _ := setupHandler(t)

	ledger.On("CreateBookingPayment", mock.Anything, ports.CreateBookingPaymentRequest{
		BookingID: "booking-1",
		Method:    models.PaymentMethodQR,
	}).Return(&models.BookingPaymentInstructions{
		PaymentID: "pay-1",
		TxRef:     "HB1234",
		OrderCode: 1234,
		Amount:    decimal.NewFromInt(1000000),
		Method:    models.PaymentMethodQR,
		QRImage:   "data:image/png;base64,AAA",
	}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/bookings/booking-1/payments", `{"method":"qr"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "HB1234", body["tx_ref"])
	assert.Equal(t, "1000000", body["amount"])
	assert.Equal(t, "data:image/png;base64,AAA", body["qr_image"])
	assert.NotContains(t, body, "checkout_url")
	ledger.AssertExpectations(t)
}

func TestCreateBookingPayment_EmptyBodyUsesDefaultMethod(t *testing.T) {
	mux, ledger, _ := setupHandler(t)

	ledger.On("CreateBookingPayment", mock.Anything, ports.CreateBookingPaymentRequest{BookingID: "booking-2"}).
		Return(&models.BookingPaymentInstructions{TxRef: "HB1", Amount: decimal.NewFromInt(5)}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/bookings/booking-2/payments", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	ledger.AssertExpectations(t)
}

func TestCreateBookingPayment_UnknownMethodRejected(t *testing.T) {
	mux, ledger, _ := setupHandler(t)

	rec := serve(mux, http.MethodPost, "/api/v1/bookings/booking-1/payments", `{"method":"cash"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(domain.ErrorCodeValidationFailed), body["code"])
	ledger.AssertNotCalled(t, "CreateBookingPayment", mock.Anything, mock.Anything)
}

func TestCreateBookingPayment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"booking not found", domain.ErrBookingNotFound, http.StatusNotFound},
		{"already paid", domain.ErrDuplicateBookingPayment, http.StatusConflict},
		{"gateway timeout", domain.ErrGatewayTimeout, http.StatusGatewayTimeout},
		{"gateway error", domain.ErrGatewayError, http.StatusBadGateway},
		{"database", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, ledger, _ := setupHandler(t)
			ledger.On("CreateBookingPayment", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(mux, http.MethodPost, "/api/v1/bookings/booking-1/payments", "")

			assert.Equal(t, tt.expected, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestGetPayment(t *testing.T) {
	mux, ledger, _ := setupHandler(t)

	paidAt := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	payment := fixtures.NewPayment().WithTxRef("HB42").Paid(paidAt).Build()
	ledger.On("GetPayment", mock.Anything, "HB42").Return(payment, nil)

	rec := serve(mux, http.MethodGet, "/api/v1/payments/HB42", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "HB42", body["tx_ref"])
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, "2025-03-01T02:30:00Z", body["paid_at"])
}

func TestGetPayment_NotFound(t *testing.T) {
	mux, ledger, _ := setupHandler(t)
	ledger.On("GetPayment", mock.Anything, "missing").Return(nil, domain.ErrPaymentNotFound)

	rec := serve(mux, http.MethodGet, "/api/v1/payments/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(domain.ErrorCodePaymentNotFound), decodeBody(t, rec)["code"])
}

func TestWebhook_Applied(t *testing.T) {
	mux, _, gateway := setupHandler(t)

	gateway.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(e ports.WebhookEvent) bool {
		return e.TxRef == "HB42" &&
			e.Amount != nil && e.Amount.Equal(decimal.NewFromInt(1000000)) &&
			e.PaidAt != nil && e.PaidAt.Equal(time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)) &&
			e.ProviderTxID == "FT123"
	})).Return(&models.MarkPaidResult{
		Outcome: models.MarkPaidApplied,
		Payment: &models.Payment{TxRef: "HB42"},
	}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook",
		`{"txRef":"HB42","amount":1000000,"paidAt":"2025-03-01T09:30:00+07:00","providerTxId":"FT123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "applied", body["outcome"])
	gateway.AssertExpectations(t)
}

func TestWebhook_AmountAsString(t *testing.T) {
	mux, _, gateway := setupHandler(t)

	gateway.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(e ports.WebhookEvent) bool {
		return e.Amount != nil && e.Amount.Equal(decimal.NewFromInt(250000))
	})).Return(&models.MarkPaidResult{Outcome: models.MarkPaidAlreadyPaid}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook", `{"txRef":"HB7","amount":"250000"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already_paid", decodeBody(t, rec)["outcome"])
}

func TestWebhook_UnknownTxRefAcknowledged(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandleWebhook", mock.Anything, mock.Anything).
		Return(&models.MarkPaidResult{Outcome: models.MarkPaidNoLocalPayment}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook", `{"txRef":"ELSEWHERE"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "no_local_payment", body["outcome"])
}

func TestWebhook_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{txRef:`},
		{"missing txRef", `{"amount":1}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, _, gateway := setupHandler(t)

			rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, decodeBody(t, rec)["ok"])
			gateway.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhook_StateConflictStillAcknowledged(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandleWebhook", mock.Anything, mock.Anything).Return(nil, domain.ErrPaymentInvalidState)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook", `{"txRef":"HB9"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "rejected", body["outcome"])
}

func TestWebhook_StorageFailureAsksForRedelivery(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandleWebhook", mock.Anything, mock.Anything).
		Return(nil, domain.WrapError(domain.ErrorCodeDatabaseError, "update payment", errors.New("deadlock")))

	rec := serve(mux, http.MethodPost, "/api/v1/payments/webhook", `{"txRef":"HB9"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])
}

func TestPayOSWebhook_Applied(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandlePayOSWebhook", mock.Anything, mock.MatchedBy(func(p *domainports.PayOSWebhookPayload) bool {
		var data domainports.PayOSWebhookData
		return p.Signature == "sig" && json.Unmarshal(p.Data, &data) == nil && data.OrderCode == 100009
	})).Return(&models.MarkPaidResult{
		Outcome: models.MarkPaidApplied,
		Payment: &models.Payment{TxRef: "HB100009"},
	}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/payos/webhook",
		`{"code":"00","desc":"success","success":true,"data":{"orderCode":100009,"amount":1000000,"code":"00"},"signature":"sig"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "applied", body["outcome"])
	assert.Equal(t, "HB100009", body["tx_ref"])
}

func TestPayOSWebhook_IgnoredEvent(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandlePayOSWebhook", mock.Anything, mock.Anything).Return(nil, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/payos/webhook", `{"code":"01","data":{"orderCode":1}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ignored", body["outcome"])
}

func TestPayOSWebhook_BadSignature(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	gateway.On("HandlePayOSWebhook", mock.Anything, mock.Anything).Return(nil, domain.ErrGatewaySignatureInvalid)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/payos/webhook", `{"code":"00","data":{"orderCode":1},"signature":"forged"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])
}

func TestSyncPayOSOrder(t *testing.T) {
	mux, _, gateway := setupHandler(t)
	paidAt := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	gateway.On("PollOrderStatus", mock.Anything, int64(100009)).Return(&ports.PollResult{
		OrderCode:     100009,
		TxRef:         "HB100009",
		GatewayStatus: "PAID",
		Outcome:       models.MarkPaidApplied,
		Payment:       fixtures.NewPayment().WithTxRef("HB100009").Paid(paidAt).Build(),
	}, nil)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/payos/100009/sync", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "PAID", body["gateway_status"])
	assert.Equal(t, "applied", body["outcome"])
	payment, ok := body["payment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "paid", payment["status"])
}

func TestSyncPayOSOrder_InvalidOrderCode(t *testing.T) {
	mux, _, gateway := setupHandler(t)

	rec := serve(mux, http.MethodPost, "/api/v1/payments/payos/abc/sync", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	gateway.AssertNotCalled(t, "PollOrderStatus", mock.Anything, mock.Anything)
}
