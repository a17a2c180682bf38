package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/config"
	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	pkgerrors "github.com/kevin07696/hotel-payout-service/pkg/errors"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
)

const (
	provider = "payos"

	// codeSuccess is the PayOS envelope code for an accepted request
	codeSuccess = "00"

	// descriptionMaxLen is the PayOS limit for bank-transfer descriptions
	descriptionMaxLen = 25
)

// Client calls the PayOS merchant API
type Client struct {
	cfg        config.PayOSConfig
	httpClient ports.HTTPClient
	secrets    ports.SecretStore
	timeouts   *resilience.TimeoutConfig
	breaker    *resilience.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a PayOS client. The API key and checksum key are
// resolved from secrets on each call; the store caches them.
func NewClient(cfg config.PayOSConfig, httpClient ports.HTTPClient, secrets ports.SecretStore, timeouts *resilience.TimeoutConfig, logger *zap.Logger) *Client {
	breakerCfg := resilience.DefaultCircuitBreakerConfig(provider)
	breakerCfg.IsFailure = countsAgainstProvider
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

type envelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type createLinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	ExpiredAt   int64  `json:"expiredAt,omitempty"`
	Signature   string `json:"signature"`
}

type createLinkData struct {
	Bin           string `json:"bin"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	OrderCode     int64  `json:"orderCode"`
	Currency      string `json:"currency"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

type orderData struct {
	ID              string             `json:"id"`
	OrderCode       int64              `json:"orderCode"`
	Amount          int64              `json:"amount"`
	AmountPaid      int64              `json:"amountPaid"`
	AmountRemaining int64              `json:"amountRemaining"`
	Status          string             `json:"status"`
	CreatedAt       string             `json:"createdAt"`
	Transactions    []orderTransaction `json:"transactions"`
}

type orderTransaction struct {
	Reference           string `json:"reference"`
	Amount              int64  `json:"amount"`
	TransactionDateTime string `json:"transactionDateTime"`
}

// CreatePaymentLink registers an order and returns its hosted checkout
func (c *Client) CreatePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (*ports.PaymentLink, error) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, domain.ErrInvalidAmount.WithDetail("field", "amount")
	}

	checksumKey, err := c.secret(ctx, c.cfg.ChecksumKeyPath)
	if err != nil {
		return nil, err
	}

	returnURL, cancelURL := req.ReturnURL, req.CancelURL
	if returnURL == "" {
		returnURL = c.cfg.ReturnURL
	}
	if cancelURL == "" {
		cancelURL = c.cfg.CancelURL
	}
	description := truncate(req.Description, descriptionMaxLen)
	amount := req.Amount.IntPart()

	body := createLinkRequest{
		OrderCode:   req.OrderCode,
		Amount:      amount,
		Description: description,
		CancelURL:   cancelURL,
		ReturnURL:   returnURL,
		Signature:   paymentRequestSignature(checksumKey, amount, req.OrderCode, description, cancelURL, returnURL),
	}
	if req.ExpiresAt != nil {
		body.ExpiredAt = req.ExpiresAt.Unix()
	}

	var data createLinkData
	if err := c.call(ctx, "create_payment_link", http.MethodPost, "/v2/payment-requests", body, &data); err != nil {
		return nil, err
	}

	c.logger.Info("PayOS payment link created",
		zap.Int64("order_code", data.OrderCode),
		zap.String("payment_link_id", data.PaymentLinkID),
	)

	return &ports.PaymentLink{
		PaymentLinkID: data.PaymentLinkID,
		CheckoutURL:   data.CheckoutURL,
		QRCode:        data.QRCode,
	}, nil
}

// GetPaymentStatus fetches the current state of an order
func (c *Client) GetPaymentStatus(ctx context.Context, orderCode int64) (*ports.GatewayOrderStatus, error) {
	var data orderData
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	if err := c.call(ctx, "get_payment_status", http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	status := &ports.GatewayOrderStatus{
		OrderCode:  data.OrderCode,
		Amount:     decimal.NewFromInt(data.Amount),
		AmountPaid: decimal.NewFromInt(data.AmountPaid),
		Status:     data.Status,
	}

	// The latest transaction carries the bank reference and settlement time
	if n := len(data.Transactions); n > 0 {
		last := data.Transactions[n-1]
		status.Reference = last.Reference
		if paidAt, ok := ports.ParsePayOSTime(last.TransactionDateTime); ok {
			status.PaidAt = &paidAt
		}
	}
	return status, nil
}

// VerifyWebhook checks the signature over the raw payload.Data and decodes
// it once the signature matches
func (c *Client) VerifyWebhook(ctx context.Context, payload *ports.PayOSWebhookPayload) (*ports.PayOSWebhookData, error) {
	if payload == nil || len(bytes.TrimSpace(payload.Data)) == 0 || bytes.Equal(bytes.TrimSpace(payload.Data), []byte("null")) {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "data")
	}
	if payload.Signature == "" {
		return nil, domain.ErrGatewaySignatureInvalid.WithDetail("reason", "missing signature")
	}

	checksumKey, err := c.secret(ctx, c.cfg.ChecksumKeyPath)
	if err != nil {
		return nil, err
	}

	expected, err := dataSignature(checksumKey, payload.Data)
	if err != nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "data", "data must be a JSON object")
	}
	if !validSignature(expected, payload.Signature) {
		c.logger.Warn("PayOS webhook signature mismatch",
			zap.Int("data_bytes", len(payload.Data)),
		)
		return nil, domain.ErrGatewaySignatureInvalid.WithDetail("reason", "signature mismatch")
	}

	var data ports.PayOSWebhookData
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		return nil, domain.NewValidationError(domain.ErrorCodeValidationFailed, "data", "signed data does not match the PayOS webhook schema")
	}
	return &data, nil
}

// call performs one request under the gateway deadline and circuit breaker.
// out receives the envelope's data field.
func (c *Client) call(ctx context.Context, operation, method, path string, in, out interface{}) error {
	apiKey, err := c.secret(ctx, c.cfg.APIKeyPath)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := c.timeouts.GatewayContext(ctx)
		defer cancel()
		return c.do(callCtx, operation, method, path, apiKey, in, out)
	})
	observability.RecordGatewayRequest(provider, operation, statusLabel(err), time.Since(start).Seconds())

	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = &pkgerrors.GatewayError{Provider: provider, Operation: operation, Description: "circuit open", Err: err}
	}

	var gwErr *pkgerrors.GatewayError
	if errors.As(err, &gwErr) {
		c.logger.Error("PayOS request failed",
			zap.String("operation", operation),
			zap.String("code", gwErr.Code),
			zap.Int("status", gwErr.StatusCode),
			zap.Bool("timeout", gwErr.Timeout),
			zap.Error(gwErr.Err),
		)
		return domain.FromGatewayError(gwErr)
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, method, path, apiKey string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.cfg.ClientID)
	httpReq.Header.Set("x-api-key", apiKey)

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

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &pkgerrors.GatewayError{
			Provider:    provider,
			Operation:   operation,
			Description: "malformed response",
			StatusCode:  httpResp.StatusCode,
			Err:         err,
		}
	}

	if httpResp.StatusCode >= 300 || env.Code != codeSuccess {
		gwErr := pkgerrors.NewGatewayError(provider, operation, env.Code, env.Desc)
		gwErr.StatusCode = httpResp.StatusCode
		return gwErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &pkgerrors.GatewayError{
				Provider:    provider,
				Operation:   operation,
				Description: "malformed response data",
				StatusCode:  httpResp.StatusCode,
				Err:         err,
			}
		}
	}
	return nil
}

func (c *Client) secret(ctx context.Context, path string) (string, error) {
	s, err := c.secrets.GetSecret(ctx, path)
	if err != nil {
		return "", fmt.Errorf("payos credential %s: %w", path, err)
	}
	return s.Value, nil
}

// countsAgainstProvider keeps rejected requests (4xx, business codes) from
// opening the circuit
func countsAgainstProvider(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var gwErr *pkgerrors.GatewayError
	if errors.As(err, &gwErr) && gwErr.StatusCode > 0 && gwErr.StatusCode < 500 && gwErr.Err == nil {
		return false
	}
	return true
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

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
