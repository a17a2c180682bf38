package vietqr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/config"
	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	pkgerrors "github.com/kevin07696/hotel-payout-service/pkg/errors"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

func setupVietQRTest(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.VietQRConfig{
		BaseURL:     server.URL,
		AccountNo:   "0011001234567",
		AccountName: "HOTEL PLATFORM",
		AcqID:       "970436",
		Template:    "compact",
	}
	timeouts := &resilience.TimeoutConfig{Gateway: 200 * time.Millisecond}
	return NewClient(cfg, &http.Client{}, nil, timeouts, zap.NewNop())
}

func TestClient_GenerateQR_Success(t *testing.T) {
	client := setupVietQRTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/generate", r.URL.Path)
		assert.Empty(t, r.Header.Get("x-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0011001234567", req.AccountNo)
		assert.Equal(t, "970436", req.AcqID)
		assert.Equal(t, int64(1000000), req.Amount)
		assert.Equal(t, "HB01JNXQ7 Booking b1", req.AddInfo)
		assert.Equal(t, "text", req.Format)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00",
			"desc": "Gen VietQR successful!",
			"data": map[string]string{
				"qrCode":    "00020101021238570010A000000727",
				"qrDataURL": "data:image/png;base64,iVBORw0KGgo=",
			},
		})
	})

	qr, err := client.GenerateQR(context.Background(), ports.QRRequest{
		TxRef:       "HB01JNXQ7",
		Amount:      decimal.NewFromInt(1000000),
		Description: "Booking #b1",
	})

	require.NoError(t, err)
	assert.Equal(t, "00020101021238570010A000000727", qr.QRCode)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", qr.QRImage)
}

func TestClient_GenerateQR_ProviderRejection(t *testing.T) {
	client := setupVietQRTest(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "31", "desc": "Invalid acqId"})
	})

	_, err := client.GenerateQR(context.Background(), ports.QRRequest{TxRef: "HB1", Amount: decimal.NewFromInt(10)})

	assert.True(t, errors.Is(err, domain.ErrGatewayError))
	var gwErr *pkgerrors.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "31", gwErr.Code)
	assert.Equal(t, "Invalid acqId", gwErr.Description)
}

func TestClient_GenerateQR_Timeout(t *testing.T) {
	client := setupVietQRTest(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := client.GenerateQR(context.Background(), ports.QRRequest{TxRef: "HB1", Amount: decimal.NewFromInt(10)})

	assert.True(t, errors.Is(err, domain.ErrGatewayTimeout))
}

func TestClient_GenerateQR_RejectsNonPositiveAmount(t *testing.T) {
	client := setupVietQRTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GenerateQR(context.Background(), ports.QRRequest{TxRef: "HB1", Amount: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestSanitizeAddInfo(t *testing.T) {
	assert.Equal(t, "HB01ABC Booking 42", sanitizeAddInfo("HB01ABC Booking #42"))
	assert.Equal(t, "Phng", sanitizeAddInfo("Phòng"))
	assert.Len(t, sanitizeAddInfo(strings.Repeat("A", 80)), addInfoMaxLen)
}
