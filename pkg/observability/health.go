package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is implemented by *pgxpool.Pool and *redis.Client wrappers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker pings each registered dependency
type HealthChecker struct {
	required map[string]Pinger
	optional map[string]Pinger
	timeout  time.Duration
}

// NewHealthChecker creates a checker with the database as a required dependency
func NewHealthChecker(db Pinger) *HealthChecker {
	h := &HealthChecker{
		required: make(map[string]Pinger),
		optional: make(map[string]Pinger),
		timeout:  2 * time.Second,
	}
	if db != nil {
		h.required["database"] = db
	}
	return h
}

// AddOptional registers a dependency whose failure degrades but does not fail health
func (h *HealthChecker) AddOptional(name string, p Pinger) {
	if p != nil {
		h.optional[name] = p
	}
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overall := "healthy"

	if len(h.required) == 0 {
		checks["database"] = "not configured"
	}
	for name, p := range h.required {
		if err := h.ping(ctx, p); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			overall = "unhealthy"
			continue
		}
		checks[name] = "healthy"
	}
	for name, p := range h.optional {
		if err := h.ping(ctx, p); err != nil {
			checks[name] = "degraded: " + err.Error()
			if overall == "healthy" {
				overall = "degraded"
			}
			continue
		}
		checks[name] = "healthy"
	}

	return HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

func (h *HealthChecker) ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return p.Ping(ctx)
}

// HealthHandler returns an HTTP handler for health checks. Degraded still answers 200.
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
