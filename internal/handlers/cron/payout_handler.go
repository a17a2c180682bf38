package cron

import (
	"crypto/subtle"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/handlers"
	"github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

// PayoutHandler handles the scheduler endpoint that runs the daily payout batch
type PayoutHandler struct {
	payouts    ports.PayoutService
	timeouts   *resilience.TimeoutConfig
	location   *time.Location // decides which calendar day is "yesterday"
	cronSecret string
	validator  *handlers.Validator
	logger     *zap.Logger
	now        func() time.Time
}

// NewPayoutHandler creates a new payout cron handler
func NewPayoutHandler(
	payouts ports.PayoutService,
	timeouts *resilience.TimeoutConfig,
	location *time.Location,
	cronSecret string,
	logger *zap.Logger,
) *PayoutHandler {
	return &PayoutHandler{
		payouts:    payouts,
		timeouts:   timeouts,
		location:   location,
		cronSecret: cronSecret,
		validator:  handlers.NewValidator(),
		logger:     logger,
		now:        timeutil.Now,
	}
}

// Register mounts the cron routes on mux
func (h *PayoutHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /cron/process-daily-payouts", h.ProcessDailyPayouts)
	mux.HandleFunc("GET /cron/health", h.HealthCheck)
}

// ProcessDailyPayoutsRequest is the optional body of a batch trigger
type ProcessDailyPayoutsRequest struct {
	TargetDate *string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// ProcessDailyPayoutsResponse reports a batch run
type ProcessDailyPayoutsResponse struct {
	Success        bool                       `json:"success"`
	TargetDate     string                     `json:"target_date"`
	TotalProcessed int                        `json:"total_processed"`
	Successful     int                        `json:"successful"`
	Failed         int                        `json:"failed"`
	Results        []models.PayoutBatchResult `json:"results"`
	ProcessedAt    string                     `json:"processed_at"`
}

// ProcessDailyPayouts handles POST /cron/process-daily-payouts. Without a
// target_date it pays out yesterday in the default hotel timezone.
func (h *PayoutHandler) ProcessDailyPayouts(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Daily payout cron job triggered",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	)

	if !h.authenticateRequest(r) {
		h.logger.Warn("Unauthorized cron request", zap.String("remote_addr", r.RemoteAddr))
		handlers.WriteMessage(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProcessDailyPayoutsRequest
	if r.ContentLength > 0 {
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			handlers.WriteError(w, h.logger, err)
			return
		}
	}

	targetDate := timeutil.BusinessDate(h.now(), h.location).AddDate(0, 0, -1)
	if req.TargetDate != nil {
		parsed, err := timeutil.ParseDate(*req.TargetDate)
		if err != nil {
			handlers.WriteError(w, h.logger, domain.NewValidationError(domain.ErrorCodeValidationFailed, "target_date", err.Error()))
			return
		}
		targetDate = parsed
	}

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	summary, err := h.payouts.ProcessDailyPayouts(ctx, targetDate)
	if err != nil {
		h.logger.Error("Daily payout batch failed",
			zap.String("target_date", timeutil.FormatDate(targetDate)),
			zap.Error(err),
		)
		handlers.WriteError(w, h.logger, err)
		return
	}

	resp := ProcessDailyPayoutsResponse{
		Success:        summary.Failed == 0,
		TargetDate:     timeutil.FormatDate(summary.TargetDate),
		TotalProcessed: summary.TotalProcessed,
		Successful:     summary.Successful,
		Failed:         summary.Failed,
		Results:        summary.Results,
		ProcessedAt:    h.now().Format(time.RFC3339),
	}
	if resp.Results == nil {
		resp.Results = []models.PayoutBatchResult{}
	}

	h.logger.Info("Daily payout processing completed",
		zap.String("target_date", resp.TargetDate),
		zap.Int("processed", resp.TotalProcessed),
		zap.Int("successful", resp.Successful),
		zap.Int("failed", resp.Failed),
	)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusPartialContent
	}
	handlers.WriteJSON(w, h.logger, status, resp)
}

// authenticateRequest accepts the shared secret as X-Cron-Secret or as a
// bearer token. An unset secret rejects everything.
func (h *PayoutHandler) authenticateRequest(r *http.Request) bool {
	if h.cronSecret == "" {
		return false
	}
	if secretEqual(r.Header.Get("X-Cron-Secret"), h.cronSecret) {
		return true
	}
	return secretEqual(r.Header.Get("Authorization"), "Bearer "+h.cronSecret)
}

func secretEqual(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// HealthCheck handles GET /cron/health for monitoring
func (h *PayoutHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}
