package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SettlementsTotal counts settlement submissions by transaction type and outcome.
	SettlementsTotal *prometheus.CounterVec
	// DepositsTotal counts deposit submissions by outcome.
	DepositsTotal *prometheus.CounterVec
	// ReturnsTotal counts return submissions by outcome.
	ReturnsTotal *prometheus.CounterVec
	// LedgerRecomputeDuration records running-balance recomputation latency.
	LedgerRecomputeDuration prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SettlementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Count of settlement submissions by type and outcome.",
		}, []string{"type", "result"})
		DepositsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_total",
			Help:      "Count of deposit submissions by outcome.",
		}, []string{"result"})
		ReturnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Count of return submissions by outcome.",
		}, []string{"result"})
		LedgerRecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_recompute_duration_ms",
			Help:      "Latency of running balance recomputation in milliseconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100},
		})
		reg.MustRegister(SettlementsTotal, DepositsTotal, ReturnsTotal, LedgerRecomputeDuration)
	})
}

// ObserveSettlement records a settlement submission outcome. Safe to call
// before metrics registration; it just drops the sample.
func ObserveSettlement(txType, result string) {
	if SettlementsTotal != nil {
		SettlementsTotal.WithLabelValues(txType, result).Inc()
	}
}

// ObserveDeposit records a deposit submission outcome.
func ObserveDeposit(result string) {
	if DepositsTotal != nil {
		DepositsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveReturn records a return submission outcome.
func ObserveReturn(result string) {
	if ReturnsTotal != nil {
		ReturnsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveLedgerRecompute records the duration of one recompute pass.
func ObserveLedgerRecompute(d time.Duration) {
	if LedgerRecomputeDuration != nil {
		LedgerRecomputeDuration.Observe(DurationMillis(d))
	}
}
