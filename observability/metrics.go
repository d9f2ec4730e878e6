package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type bountyMetrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

var (
	bountyMetricsOnce sync.Once
	bountyRegistry    *bountyMetrics
)

// BountyMetrics returns the lazily-initialised metrics registry used to record
// bounty module activity.
func BountyMetrics() *bountyMetrics {
	bountyMetricsOnce.Do(func() {
		bountyRegistry = &bountyMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "openbounty",
				Subsystem: "bounty",
				Name:      "operations_total",
				Help:      "Total bounty operations segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "openbounty",
				Subsystem: "bounty",
				Name:      "errors_total",
				Help:      "Total failed bounty operations segmented by operation.",
			}, []string{"op"}),
		}
		prometheus.MustRegister(
			bountyRegistry.operations,
			bountyRegistry.errors,
		)
	})
	return bountyRegistry
}

// ObserveOperation records one public bounty operation and its outcome.
func (m *bountyMetrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.errors.WithLabelValues(op).Inc()
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}
