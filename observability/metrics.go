package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BondLedgerMetrics records bond ledger activity on the executor.
type BondLedgerMetrics struct {
	operations      *prometheus.CounterVec
	errors          *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	rewardsPaid     prometheus.Counter
	positionsOpened *prometheus.CounterVec
	positionsClosed prometheus.Counter
	throttles       *prometheus.CounterVec
}

var (
	bondMetricsOnce sync.Once
	bondRegistry    *BondLedgerMetrics
)

// BondMetrics returns the lazily-initialised bond ledger metrics registered
// on the default prometheus registry.
func BondMetrics() *BondLedgerMetrics {
	bondMetricsOnce.Do(func() {
		bondRegistry = newBondLedgerMetrics()
		prometheus.MustRegister(bondRegistry.collectors()...)
	})
	return bondRegistry
}

// NewBondLedgerMetrics builds an unregistered metrics set, for tests and for
// callers that manage their own registry.
func NewBondLedgerMetrics(reg prometheus.Registerer) (*BondLedgerMetrics, error) {
	m := newBondLedgerMetrics()
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func newBondLedgerMetrics() *BondLedgerMetrics {
	return &BondLedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "operations_total",
			Help:      "Bond ledger operations segmented by operation and outcome.",
		}, []string{"op", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "errors_total",
			Help:      "Rejected bond ledger operations segmented by operation and error code.",
		}, []string{"op", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution of bond ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		rewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "rewards_paid_total",
			Help:      "Smallest units paid out of the rewards pool to wallets.",
		}),
		positionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "positions_opened_total",
			Help:      "Positions opened segmented by source (deposit or compound).",
		}, []string{"source"}),
		positionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "positions_closed_total",
			Help:      "Positions closed after reaching the emission cap.",
		}),
		throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testudo",
			Subsystem: "bonds",
			Name:      "throttles_total",
			Help:      "Submissions rejected by per-signer quotas.",
		}, []string{"reason"}),
	}
}

func (m *BondLedgerMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.operations,
		m.errors,
		m.latency,
		m.rewardsPaid,
		m.positionsOpened,
		m.positionsClosed,
		m.throttles,
	}
}

// Observe records the outcome of one operation. A negative code marks a
// failure without a ledger error code.
func (m *BondLedgerMetrics) Observe(op string, err error, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		label := "internal"
		if code >= 0 {
			label = strconv.Itoa(code)
		}
		m.errors.WithLabelValues(op, label).Inc()
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordOpened counts a newly opened position.
func (m *BondLedgerMetrics) RecordOpened(source string) {
	if m == nil {
		return
	}
	m.positionsOpened.WithLabelValues(source).Inc()
}

func (m *BondLedgerMetrics) RecordClosed() {
	if m == nil {
		return
	}
	m.positionsClosed.Inc()
}

// RecordPaid adds amount to the rewards paid counter.
func (m *BondLedgerMetrics) RecordPaid(amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.rewardsPaid.Add(float64(amount))
}

// RecordThrottle counts a submission rejected by a quota. Reasons should be
// stable strings such as "quota_exceeded".
func (m *BondLedgerMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}
