package vietqr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/config"
	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	pkgerrors "github.com/kevin07696/hotel-payout-service/pkg/errors"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

const (
	provider    = "vietqr"
	operation   = "generate_qr"
	codeSuccess = "00"

	// addInfoMaxLen is the longest transfer note most banks keep intact
	addInfoMaxLen = 50
)

// Client generates bank-transfer QR codes through the VietQR API. The
// transfer note carries the txRef so the incoming transfer can be matched.
type Client struct {
	cfg        config.VietQRConfig
	httpClient ports.HTTPClient
	secrets    ports.SecretStore
	timeouts   *resilience.TimeoutConfig
	breaker    *resilience.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a VietQR client
func NewClient(cfg config.VietQRConfig, httpClient ports.HTTPClient, secrets ports.SecretStore, timeouts *resilience.TimeoutConfig, logger *zap.Logger) *Client {
	breakerCfg := resilience.DefaultCircuitBreakerConfig(provider)
	breakerCfg.OnStateChange = func(name string, from, to resilience.CircuitState) {
		logger.Warn("Gateway circuit breaker state changed",
			zap.String("provider", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		observability.SetCircuitBreakerState(name, int(to))
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		secrets:    secrets,
		timeouts:   timeouts,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
		logger:     logger,
	}
}

type generateRequest struct {
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	AcqID       string `json:"acqId"`
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	Format      string `json:"format"`
	Template    string `json:"template"`
}

type generateResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data *struct {
		QRCode    string `json:"qrCode"`
		QRDataURL string `json:"qrDataURL"`
	} `json:"data"`
}

// GenerateQR returns the EMV payload and a data-URL image for the transfer
func (c *Client) GenerateQR(ctx context.Context, req ports.QRRequest) (*ports.QRResult, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount.WithDetail("field", "amount")
	}

	addInfo := req.TxRef
	if req.Description != "" {
		addInfo = req.TxRef + " " + req.Description
	}

	body := generateRequest{
		AccountNo:   c.cfg.AccountNo,
		AccountName: c.cfg.AccountName,
		AcqID:       c.cfg.AcqID,
		Amount:      req.Amount.Ceil().IntPart(),
		AddInfo:     sanitizeAddInfo(addInfo),
		Format:      "text",
		Template:    c.cfg.Template,
	}

	var headers http.Header
	if c.cfg.ClientID != "" {
		apiKey, err := c.secrets.GetSecret(ctx, c.cfg.APIKeyPath)
		if err != nil {
			return nil, fmt.Errorf("vietqr credential %s: %w", c.cfg.APIKeyPath, err)
		}
		headers = http.Header{}
		headers.Set("x-client-id", c.cfg.ClientID)
		headers.Set("x-api-key", apiKey.Value)
	}

	var resp generateResponse
	start := time.Now()
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := c.timeouts.GatewayContext(ctx)
		defer cancel()
		return c.post(callCtx, "/v2/generate", headers, body, &resp)
	})
	observability.RecordGatewayRequest(provider, operation, statusLabel(err), time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = &pkgerrors.GatewayError{Provider: provider, Operation: operation, Description: "circuit open", Err: err}
		}
		var gwErr *pkgerrors.GatewayError
		if errors.As(err, &gwErr) {
			c.logger.Error("VietQR request failed",
				zap.String("tx_ref", req.TxRef),
				zap.String("code", gwErr.Code),
				zap.Bool("timeout", gwErr.Timeout),
				zap.Error(gwErr.Err),
			)
			return nil, domain.FromGatewayError(gwErr)
		}
		return nil, err
	}

	return &ports.QRResult{
		QRCode:  resp.Data.QRCode,
		QRImage: resp.Data.QRDataURL,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, headers http.Header, in interface{}, out *generateResponse) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &pkgerrors.GatewayError{
			Provider:    provider,
			Operation:   operation,
			Description: "request failed",
			Timeout:     isTimeout(ctx, err),
			Err:         err,
		}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &pkgerrors.GatewayError{
			Provider:    provider,
			Operation:   operation,
			Description: "failed to read response",
			StatusCode:  httpResp.StatusCode,
			Timeout:     isTimeout(ctx, err),
			Err:         err,
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &pkgerrors.GatewayError{
			Provider:    provider,
			Operation:   operation,
			Description: "malformed response",
			StatusCode:  httpResp.StatusCode,
			Err:         err,
		}
	}
	if httpResp.StatusCode >= 300 || out.Code != codeSuccess {
		gwErr := pkgerrors.NewGatewayError(provider, operation, out.Code, out.Desc)
		gwErr.StatusCode = httpResp.StatusCode
		return gwErr
	}
	if out.Data == nil || out.Data.QRCode == "" {
		return &pkgerrors.GatewayError{
			Provider:    provider,
			Operation:   operation,
			Description: "response has no QR data",
			StatusCode:  httpResp.StatusCode,
		}
	}
	return nil
}

// sanitizeAddInfo keeps letters, digits and spaces; banks drop or reject
// other characters in the transfer note
func sanitizeAddInfo(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && (r == ' ' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
		if b.Len() == addInfoMaxLen {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusLabel(err error) string {
	var gwErr *pkgerrors.GatewayError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &gwErr) && gwErr.Timeout:
		return "timeout"
	default:
		return "error"
	}
}
