package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business
	TokensIssued      prometheus.Counter
	OrdersCreated     *prometheus.CounterVec
	DuplicateSubmits  prometheus.Counter
	ModerationResults *prometheus.CounterVec
	PaymentIntents    *prometheus.CounterVec
	WebhookResults    *prometheus.CounterVec
	PaymentsClosed    prometheus.Counter

	// Validation
	ValidationErrors   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qingyusuchuan_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "qingyusuchuan_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		TokensIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_submission_tokens_issued_total",
				Help: "Total number of submission tokens issued",
			},
		),
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_orders_created_total",
				Help: "Total number of orders created",
			},
			[]string{"order_type"},
		),
		DuplicateSubmits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_duplicate_submits_total",
				Help: "Total number of submits deduplicated by idempotency key",
			},
		),
		ModerationResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_moderation_results_total",
				Help: "Total number of moderation outcomes",
			},
			[]string{"outcome"},
		),
		PaymentIntents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_payment_intents_total",
				Help: "Total number of payment intents created",
			},
			[]string{"payment_type"},
		),
		WebhookResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_payment_webhooks_total",
				Help: "Total number of payment webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
		PaymentsClosed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_payments_closed_total",
				Help: "Total number of payments closed by users",
			},
		),

		ValidationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qingyusuchuan_validation_errors_total",
				Help: "Total number of validation errors",
			},
			[]string{"field", "tag"},
		),
		ValidationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qingyusuchuan_validation_duration_seconds",
				Help:    "Duration of validation operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"endpoint"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordTokenIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) RecordOrderCreated(orderType string) {
	m.OrdersCreated.WithLabelValues(orderType).Inc()
}

func (m *Metrics) RecordDuplicateSubmit() {
	m.DuplicateSubmits.Inc()
}

func (m *Metrics) RecordModerationResult(outcome string) {
	m.ModerationResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPaymentIntent(paymentType string) {
	m.PaymentIntents.WithLabelValues(paymentType).Inc()
}

func (m *Metrics) RecordWebhookResult(outcome string) {
	m.WebhookResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPaymentClosed() {
	m.PaymentsClosed.Inc()
}

func (m *Metrics) RecordValidationError(field, tag string) {
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

func (m *Metrics) RecordValidationDuration(endpoint string, duration time.Duration) {
	m.ValidationDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
