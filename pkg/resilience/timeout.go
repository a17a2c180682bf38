package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the timeout hierarchy, outermost first:
//
//	HTTP Handler (30s)
//	  ↓
//	Gateway call (10s, PayOS / VietQR)
//	  ↓
//	Database query (5s)
//
// Cron batches get their own budget because they call CreatePayout once per
// hotel.
type TimeoutConfig struct {
	HTTPHandler time.Duration
	Webhook     time.Duration // gateway webhook handling, kept short so providers do not redeliver
	CronJob     time.Duration
	Gateway     time.Duration
	Query       time.Duration
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 30 * time.Second,
		Webhook:     15 * time.Second,
		CronJob:     5 * time.Minute,
		Gateway:     10 * time.Second,
		Query:       5 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 3 * time.Second,
		Webhook:     2 * time.Second,
		CronJob:     10 * time.Second,
		Gateway:     1 * time.Second,
		Query:       500 * time.Millisecond,
	}
}

// WithGateway overrides the gateway deadline, keeping the handler budget above it
func (tc *TimeoutConfig) WithGateway(d time.Duration) *TimeoutConfig {
	out := *tc
	if d > 0 {
		out.Gateway = d
	}
	if out.HTTPHandler <= out.Gateway {
		out.HTTPHandler = out.Gateway * 3
	}
	if out.Webhook <= out.Gateway {
		out.Webhook = out.Gateway + out.Gateway/2
	}
	return &out
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// WebhookContext creates a context for processing one gateway notification
func (tc *TimeoutConfig) WebhookContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Webhook)
}

// CronContext creates a context with timeout for cron jobs
func (tc *TimeoutConfig) CronContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.CronJob)
}

// GatewayContext creates the fixed deadline for one outbound provider call
func (tc *TimeoutConfig) GatewayContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Gateway)
}

// QueryContext creates a context for a single database round trip
func (tc *TimeoutConfig) QueryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Query)
}
