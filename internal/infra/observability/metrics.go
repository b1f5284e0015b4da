package observability

import (
	"time"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the fund backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	paymentsPosted  *prometheus.CounterVec
	classifications *prometheus.CounterVec
	withdrawals     *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	notifyErrors    prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fund_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		paymentsPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_payments_posted_total",
				Help: "Total payment records written, by ledger type.",
			},
			[]string{"type"},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_classifications_total",
				Help: "Payment classification outcomes.",
			},
			[]string{"outcome"},
		),
		withdrawals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_withdrawals_total",
				Help: "Deposit withdrawals, by mode.",
			},
			[]string{"mode"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_store_errors_total",
				Help: "Total errors from the data store, by operation.",
			},
			[]string{"operation"},
		),
		notifyErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fund_notify_errors_total",
				Help: "Total failed Telegram notifications.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fund_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrPaymentPosted increments the posted-payments counter for a ledger type.
func (m *Metrics) IncrPaymentPosted(paymentType string) {
	m.paymentsPosted.WithLabelValues(paymentType).Inc()
}

// IncrClassification increments the classification outcome counter.
// Outcomes: accepted, rejected, confirmation_required.
func (m *Metrics) IncrClassification(outcome string) {
	m.classifications.WithLabelValues(outcome).Inc()
}

// IncrWithdrawal increments the withdrawal counter for a mode.
func (m *Metrics) IncrWithdrawal(mode string) {
	m.withdrawals.WithLabelValues(mode).Inc()
}

// IncrStoreError increments the data-store error counter.
func (m *Metrics) IncrStoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

// IncrNotifyError increments the failed-notification counter.
func (m *Metrics) IncrNotifyError() {
	m.notifyErrors.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetLedgerSnapshot returns a snapshot of ledger metrics for the admin
// dashboard endpoint.
func (m *Metrics) GetLedgerSnapshot() *domain.LedgerMetrics {
	contributions := getCounterValue(m.paymentsPosted, string(domain.PaymentContribution))
	repayments := getCounterValue(m.paymentsPosted, string(domain.PaymentRepayment))
	withdrawals := getCounterValue(m.withdrawals, string(domain.WithdrawDeductLoan)) +
		getCounterValue(m.withdrawals, string(domain.WithdrawTransfer))

	var storeErrors float64
	for _, op := range []string{"list", "get", "create", "update"} {
		storeErrors += getCounterValue(m.storeErrors, op)
	}

	hits := getCounterValue(m.cacheHits, "members")
	misses := getCounterValue(m.cacheMisses, "members")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		PaymentsPosted:      int64(contributions + repayments),
		ContributionsPosted: int64(contributions),
		RepaymentsPosted:    int64(repayments),
		WithdrawalsPosted:   int64(withdrawals),
		StoreErrors:         int64(storeErrors),
		CacheHitRate:        hitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
