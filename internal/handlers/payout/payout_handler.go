package payout

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
	"github.com/kevin07696/hotel-payout-service/internal/domain/models"
	"github.com/kevin07696/hotel-payout-service/internal/handlers"
	"github.com/kevin07696/hotel-payout-service/internal/services/ports"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves revenue reporting and payout endpoints
type Handler struct {
	revenue   ports.RevenueService
	reports   ports.ReportService
	payouts   ports.PayoutService
	timeouts  *resilience.TimeoutConfig
	validator *handlers.Validator
	logger    *zap.Logger
}

// NewHandler creates a new payout handler
func NewHandler(
	revenue ports.RevenueService,
	reports ports.ReportService,
	payouts ports.PayoutService,
	timeouts *resilience.TimeoutConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		revenue:   revenue,
		reports:   reports,
		payouts:   payouts,
		timeouts:  timeouts,
		validator: handlers.NewValidator(),
		logger:    logger,
	}
}

// Register mounts the revenue and payout routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/hotels/{hotelID}/revenue/daily", h.GetDailyRevenue)
	mux.HandleFunc("GET /api/v1/hotels/{hotelID}/revenue/daily/export", h.ExportDailyRevenue)
	mux.HandleFunc("GET /api/v1/hotels/{hotelID}/payouts", h.ListPayouts)
	mux.HandleFunc("POST /api/v1/payouts", h.CreatePayout)
	mux.HandleFunc("GET /api/v1/payouts/preview", h.PreviewPayout)
	mux.HandleFunc("GET /api/v1/payouts/{payoutID}", h.GetPayout)
}

// CreatePayoutRequest is the body of POST /api/v1/payouts
type CreatePayoutRequest struct {
	HotelID        string           `json:"hotel_id" validate:"required"`
	CoverDate      string           `json:"cover_date" validate:"required,datetime=2006-01-02"`
	TotalNetAmount *decimal.Decimal `json:"total_net_amount,omitempty"`
}

// DailyRevenueRow is one hotel-day in a revenue response
type DailyRevenueRow struct {
	BizDate          string `json:"biz_date"`
	HotelID          string `json:"hotel_id"`
	HotelName        string `json:"hotel_name"`
	BookingsCount    int    `json:"bookings_count"`
	GrossSum         string `json:"gross_sum"`
	ProcessingFeeSum string `json:"processing_fee_sum"`
	PlatformFeeSum   string `json:"platform_fee_sum"`
	HotelNetSum      string `json:"hotel_net_sum"`
}

// DailyRevenueResponse lists revenue rows, newest day first
type DailyRevenueResponse struct {
	HotelID  string            `json:"hotel_id"`
	DateFrom string            `json:"date_from"`
	DateTo   string            `json:"date_to"`
	Rows     []DailyRevenueRow `json:"rows"`
}

// BreakdownResponse is the commission calculation in string amounts
type BreakdownResponse struct {
	HotelNetRevenue  string `json:"hotel_net_revenue"`
	CommissionRate   string `json:"commission_rate"`
	GrossRevenue     string `json:"gross_revenue"`
	CommissionAmount string `json:"commission_amount"`
	PayoutAmount     string `json:"payout_amount"`
	LegacyRateUsed   bool   `json:"legacy_rate_used"`
}

// PayoutResponse is the API view of a stored payout
type PayoutResponse struct {
	ID                 string                      `json:"id"`
	HotelID            string                      `json:"hotel_id"`
	CoverDate          string                      `json:"cover_date"`
	TotalNetAmount     string                      `json:"total_net_amount"`
	Status             string                      `json:"status"`
	Calculation        *BreakdownResponse          `json:"calculation,omitempty"`
	BankAccount        *models.BankAccountSnapshot `json:"bank_account,omitempty"`
	Contract           *models.ContractSnapshot    `json:"contract,omitempty"`
	SupersededPayoutID string                      `json:"superseded_payout_id,omitempty"`
	CreatedAt          string                      `json:"created_at"`
}

// PreviewResponse is what a create would write
type PreviewResponse struct {
	HotelID          string                     `json:"hotel_id"`
	CoverDate        string                     `json:"cover_date"`
	Calculation      BreakdownResponse          `json:"calculation"`
	BankAccount      models.BankAccountSnapshot `json:"bank_account"`
	Contract         models.ContractSnapshot    `json:"contract"`
	WouldSupersedeID string                     `json:"would_supersede_id,omitempty"`
}

// GetDailyRevenue handles GET /api/v1/hotels/{hotelID}/revenue/daily
func (h *Handler) GetDailyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	q, err := revenueQuery(r)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	rows, err := h.revenue.GetDailyRevenue(ctx, q)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	resp := DailyRevenueResponse{
		HotelID:  *q.HotelID,
		DateFrom: timeutil.FormatDate(q.DateFrom),
		DateTo:   timeutil.FormatDate(q.DateTo),
		Rows:     make([]DailyRevenueRow, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, DailyRevenueRow{
			BizDate:          timeutil.FormatDate(row.BizDate),
			HotelID:          row.HotelID,
			HotelName:        row.HotelName,
			BookingsCount:    row.BookingsCount,
			GrossSum:         money.Format(row.GrossSum),
			ProcessingFeeSum: money.Format(row.ProcessingFeeSum),
			PlatformFeeSum:   money.Format(row.PlatformFeeSum),
			HotelNetSum:      money.Format(row.HotelNetSum),
		})
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, resp)
}

// ExportDailyRevenue handles GET /api/v1/hotels/{hotelID}/revenue/daily/export.
// The workbook is rendered into memory first so a failure can still produce
// a JSON error.
func (h *Handler) ExportDailyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	q, err := revenueQuery(r)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.WriteDailyRevenueXLSX(ctx, q, &buf); err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("revenue_%s_%s_%s.xlsx", *q.HotelID,
		timeutil.FormatDate(q.DateFrom), timeutil.FormatDate(q.DateTo))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to stream revenue export", zap.String("hotel_id", *q.HotelID), zap.Error(err))
	}
}

// CreatePayout handles POST /api/v1/payouts
func (h *Handler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	var req CreatePayoutRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	coverDate, err := parseDateParam("cover_date", req.CoverDate)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	payout, err := h.payouts.CreatePayout(ctx, ports.CreatePayoutRequest{
		HotelID:        req.HotelID,
		CoverDate:      coverDate,
		TotalNetAmount: req.TotalNetAmount,
	})
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}
	handlers.WriteJSON(w, h.logger, http.StatusCreated, toPayoutResponse(payout))
}

// PreviewPayout handles GET /api/v1/payouts/preview
func (h *Handler) PreviewPayout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	query := r.URL.Query()
	hotelID := query.Get("hotel_id")
	if hotelID == "" {
		handlers.WriteError(w, h.logger, domain.NewValidationError(domain.ErrorCodeValidationMissingField, "hotel_id", "hotel_id is required"))
		return
	}
	coverDate, err := parseDateParam("cover_date", query.Get("cover_date"))
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	preview, err := h.payouts.PreviewPayout(ctx, ports.CreatePayoutRequest{HotelID: hotelID, CoverDate: coverDate})
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, h.logger, http.StatusOK, PreviewResponse{
		HotelID:          preview.HotelID,
		CoverDate:        timeutil.FormatDate(preview.CoverDate),
		Calculation:      toBreakdownResponse(preview.Calculation),
		BankAccount:      preview.BankAccount,
		Contract:         preview.Contract,
		WouldSupersedeID: preview.WouldSupersedeID,
	})
}

// ListPayouts handles GET /api/v1/hotels/{hotelID}/payouts
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	from, to, err := dateRange(r)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	payouts, err := h.payouts.ListPayouts(ctx, r.PathValue("hotelID"), from, to)
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}

	out := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResponse(p))
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"hotel_id": r.PathValue("hotelID"),
		"payouts":  out,
	})
}

// GetPayout handles GET /api/v1/payouts/{payoutID}
func (h *Handler) GetPayout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	payout, err := h.payouts.GetPayout(ctx, r.PathValue("payoutID"))
	if err != nil {
		handlers.WriteError(w, h.logger, err)
		return
	}
	handlers.WriteJSON(w, h.logger, http.StatusOK, toPayoutResponse(payout))
}

func revenueQuery(r *http.Request) (ports.DailyRevenueQuery, error) {
	from, to, err := dateRange(r)
	if err != nil {
		return ports.DailyRevenueQuery{}, err
	}
	hotelID := r.PathValue("hotelID")
	return ports.DailyRevenueQuery{HotelID: &hotelID, DateFrom: from, DateTo: to}, nil
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	from, err := parseDateParam("from", query.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateParam("to", query.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseDateParam(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, domain.NewValidationError(domain.ErrorCodeValidationMissingField, field, field+" is required")
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(domain.ErrorCodeValidationFailed, field, err.Error())
	}
	return t, nil
}

func toBreakdownResponse(b models.CommissionBreakdown) BreakdownResponse {
	return BreakdownResponse{
		HotelNetRevenue:  money.Format(b.HotelNetRevenue),
		CommissionRate:   b.CommissionRate.String(),
		GrossRevenue:     money.Format(b.GrossRevenue),
		CommissionAmount: money.Format(b.CommissionAmount),
		PayoutAmount:     money.Format(b.PayoutAmount),
		LegacyRateUsed:   b.LegacyRateUsed,
	}
}

func toPayoutResponse(p *models.Payout) PayoutResponse {
	resp := PayoutResponse{
		ID:             p.ID,
		HotelID:        p.HotelID,
		CoverDate:      timeutil.FormatDate(p.CoverDate),
		TotalNetAmount: money.Format(p.TotalNetAmount),
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.Note != nil {
		calc := toBreakdownResponse(p.Note.Calculation)
		bank := p.Note.BankAccount
		contract := p.Note.Contract
		resp.Calculation = &calc
		resp.BankAccount = &bank
		resp.Contract = &contract
		resp.SupersededPayoutID = p.Note.SupersededPayoutID
	}
	return resp
}
