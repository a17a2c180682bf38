package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payments_recorded_total",
		Help: "Pending payments recorded, by payment method",
	}, []string{"method"})

	paymentConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payment_confirmations_total",
		Help: "Gateway confirmations by source and outcome",
	}, []string{
		"source",  // webhook, payos_webhook, poll
		"outcome", // applied, already_paid, no_local_payment, duplicate_booking, invalid_state, error
	})

	paidAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payment_paid_amount_total",
		Help: "Gross amount of payments confirmed as paid, in minor currency units",
	}, []string{"currency"})

	paidAmountMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_payment_paid_amount_mismatch_total",
		Help: "Confirmations whose paid amount differed from the recorded gross",
	})

	bookingUpdateFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_booking_paid_flag_failures_total",
		Help: "Best-effort booking paid flag updates that failed",
	})

	payoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payouts_total",
		Help: "Payout creation attempts by outcome",
	}, []string{
		"outcome", // created, superseded, no_contract, no_bank_account, no_revenue, error
	})

	payoutAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_payout_amount_total",
		Help: "Sum of scheduled payout amounts, in minor currency units",
	})

	legacyCommissionFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_commission_legacy_rate_fallback_total",
		Help: "Contracts whose commission rate above 100 was replaced by the default rate",
	})

	payoutBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotel_payout_batch_duration_seconds",
		Help:    "Duration of daily payout batches",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"status"})

	payoutBatchHotels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payout_batch_hotels_total",
		Help: "Hotels processed by daily payout batches, by result",
	}, []string{"result"})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotel_gateway_request_duration_seconds",
		Help:    "Outbound payment gateway call duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{
		"provider",  // payos, vietqr
		"operation", // create_link, get_status, generate_qr
		"status",    // ok, error, timeout, circuit_open
	})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotel_gateway_circuit_state",
		Help: "Circuit breaker state per provider (0 closed, 1 open, 2 half-open)",
	}, []string{"provider"})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"path"})
)

// RecordPaymentRecorded counts a new pending payment
func RecordPaymentRecorded(method string) {
	paymentsRecordedTotal.WithLabelValues(method).Inc()
}

// RecordPaymentConfirmation counts one gateway confirmation and, when it
// moved a payment to paid, its gross amount
func RecordPaymentConfirmation(source, outcome string, grossMinorUnits float64, currency string) {
	paymentConfirmationsTotal.WithLabelValues(source, outcome).Inc()
	if outcome == "applied" {
		paidAmountTotal.WithLabelValues(currency).Add(grossMinorUnits)
	}
}

// RecordPaidAmountMismatch counts a confirmation whose amount differed
func RecordPaidAmountMismatch() {
	paidAmountMismatchTotal.Inc()
}

// RecordBookingUpdateFailure counts a failed best-effort booking update
func RecordBookingUpdateFailure() {
	bookingUpdateFailuresTotal.Inc()
}

// RecordPayout counts a payout attempt; amount is only added for created payouts
func RecordPayout(outcome string, amountMinorUnits float64) {
	payoutsTotal.WithLabelValues(outcome).Inc()
	if outcome == "created" {
		payoutAmountTotal.Add(amountMinorUnits)
	}
}

// RecordLegacyCommissionFallback counts a legacy rate replacement
func RecordLegacyCommissionFallback() {
	legacyCommissionFallbackTotal.Inc()
}

// RecordPayoutBatch records a finished batch
func RecordPayoutBatch(status string, durationSeconds float64, successful, failed int) {
	payoutBatchDuration.WithLabelValues(status).Observe(durationSeconds)
	payoutBatchHotels.WithLabelValues("success").Add(float64(successful))
	payoutBatchHotels.WithLabelValues("failed").Add(float64(failed))
}

// RecordGatewayRequest records one outbound gateway call
func RecordGatewayRequest(provider, operation, status string, durationSeconds float64) {
	gatewayRequestDuration.WithLabelValues(provider, operation, status).Observe(durationSeconds)
}

// SetCircuitBreakerState publishes a provider's breaker state
func SetCircuitBreakerState(provider string, state int) {
	circuitBreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordRateLimited counts a rejected request
func RecordRateLimited(path string) {
	rateLimitedTotal.WithLabelValues(path).Inc()
}
