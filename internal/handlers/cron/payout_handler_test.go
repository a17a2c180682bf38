package cron

import (
	"encoding/json"
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
	"github.com/kevin07696/hotel-payout-service/internal/testutil/fixtures"
	"github.com/kevin07696/hotel-payout-service/internal/testutil/mocks"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

const testSecret = "cron-secret"

func setupHandler(t *testing.T) (*http.ServeMux, *mocks.MockPayoutService) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	payouts := new(mocks.MockPayoutService)
	h := NewPayoutHandler(payouts, resilience.TestTimeoutConfig(), loc, testSecret, zaptest.NewLogger(t))
	// 2025-03-01 18:30 UTC is already March 2 in Vietnam
	h.now = func() time.Time { return time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	h.Register(mux)
	return mux, payouts
}

func trigger(mux *http.ServeMux, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/cron/process-daily-payouts", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/cron/process-daily-payouts", strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
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

func TestProcessDailyPayouts_DefaultsToYesterdayInHotelTimezone(t *testing.T) {
	mux, payouts := setupHandler(t)

	payouts.On("ProcessDailyPayouts", mock.Anything, fixtures.Date(2025, time.March, 1)).
		Return(&models.PayoutBatchSummary{
			TargetDate:     fixtures.Date(2025, time.March, 1),
			TotalProcessed: 1,
			Successful:     1,
			Results: []models.PayoutBatchResult{
				{HotelID: "hotel-1", Success: true, PayoutID: "payout-1", Amount: decimal.NewFromInt(900000)},
			},
		}, nil)

	rec := trigger(mux, "", map[string]string{"X-Cron-Secret": testSecret})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-03-01", body["target_date"])
	assert.Equal(t, float64(1), body["successful"])
	payouts.AssertExpectations(t)
}

func TestProcessDailyPayouts_ExplicitTargetDateWithBearer(t *testing.T) {
	mux, payouts := setupHandler(t)

	payouts.On("ProcessDailyPayouts", mock.Anything, fixtures.Date(2025, time.February, 20)).
		Return(&models.PayoutBatchSummary{TargetDate: fixtures.Date(2025, time.February, 20)}, nil)

	rec := trigger(mux, `{"target_date":"2025-02-20"}`, map[string]string{"Authorization": "Bearer " + testSecret})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2025-02-20", body["target_date"])
	assert.Equal(t, []interface{}{}, body["results"])
}

func TestProcessDailyPayouts_PartialSuccess(t *testing.T) {
	mux, payouts := setupHandler(t)

	payouts.On("ProcessDailyPayouts", mock.Anything, mock.Anything).
		Return(&models.PayoutBatchSummary{
			TargetDate:     fixtures.Date(2025, time.March, 1),
			TotalProcessed: 2,
			Successful:     1,
			Failed:         1,
			Results: []models.PayoutBatchResult{
				{HotelID: "hotel-1", Success: true, PayoutID: "payout-1", Amount: decimal.NewFromInt(900000)},
				{HotelID: "hotel-2", Success: false, Amount: decimal.NewFromInt(450000), Error: domain.ErrNoBankAccount.Error()},
			},
		}, nil)

	rec := trigger(mux, "", map[string]string{"X-Cron-Secret": testSecret})

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Contains(t, results[1].(map[string]interface{})["error"], string(domain.ErrorCodeNoBankAccount))
}

func TestProcessDailyPayouts_Unauthorized(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no credentials", nil},
		{"wrong secret", map[string]string{"X-Cron-Secret": "guess"}},
		{"wrong bearer", map[string]string{"Authorization": "Bearer guess"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, payouts := setupHandler(t)

			rec := trigger(mux, "", tt.headers)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeBody(t, rec)["error"])
			payouts.AssertNotCalled(t, "ProcessDailyPayouts", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessDailyPayouts_InvalidTargetDate(t *testing.T) {
	mux, payouts := setupHandler(t)

	rec := trigger(mux, `{"target_date":"March 1"}`, map[string]string{"X-Cron-Secret": testSecret})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payouts.AssertNotCalled(t, "ProcessDailyPayouts", mock.Anything, mock.Anything)
}

func TestProcessDailyPayouts_BatchAlreadyRunning(t *testing.T) {
	mux, payouts := setupHandler(t)
	payouts.On("ProcessDailyPayouts", mock.Anything, mock.Anything).Return(nil, domain.ErrBatchInProgress)

	rec := trigger(mux, "", map[string]string{"X-Cron-Secret": testSecret})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(domain.ErrorCodeBatchInProgress), decodeBody(t, rec)["code"])
}

func TestHealthCheck(t *testing.T) {
	mux, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2025-03-01T18:30:00Z", body["time"])
}
