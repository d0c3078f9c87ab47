package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Webhook / ledger metrics
	PaymentsAppliedTotal *prometheus.CounterVec
	PaymentApplyDuration *prometheus.HistogramVec
	InvoiceStatusTotal   *prometheus.CounterVec

	// Sequential queue metrics
	QueueBacklog         prometheus.Gauge
	QueueEventsTotal     *prometheus.CounterVec
	QueueProcessedCached prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Durable-queue worker metrics
	WorkerEventsTotal   *prometheus.CounterVec
	WorkerDrainDuration prometheus.Histogram
	BreakerState        *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, reg)

	m := &Metrics{
		PaymentsAppliedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_applied_total",
				Help:      "Total number of payment events applied by outcome",
			},
			[]string{"outcome"},
		),
		PaymentApplyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payment_apply_duration_seconds",
				Help:      "Duration of transactional payment application in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		InvoiceStatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoice_status_total",
				Help:      "Total number of invoice status recomputations by resulting status",
			},
			[]string{"status"},
		),
		QueueBacklog: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_backlog",
				Help:      "Current number of events waiting in the sequential queue",
			},
		),
		QueueEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_events_total",
				Help:      "Total number of queue events by result (processed, dropped, duplicate)",
			},
			[]string{"result"},
		),
		QueueProcessedCached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_processed_cached",
				Help:      "Current size of the in-memory processed-event cache",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		WorkerEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_events_total",
				Help:      "Total number of durable-queue events drained by status",
			},
			[]string{"status"},
		),
		WorkerDrainDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "worker_drain_duration_seconds",
				Help:      "Duration of one durable-queue drain cycle in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}

	// Register all collectors
	factory.MustRegister(
		m.PaymentsAppliedTotal,
		m.PaymentApplyDuration,
		m.InvoiceStatusTotal,
		m.QueueBacklog,
		m.QueueEventsTotal,
		m.QueueProcessedCached,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WorkerEventsTotal,
		m.WorkerDrainDuration,
		m.BreakerState,
	)

	return m
}
