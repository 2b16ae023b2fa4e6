// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	submissions       *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg. A nil reg keeps the
// collectors unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_launcher_tx_submissions_total",
			Help: "Broadcast transactions by terminal outcome",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_launcher_tx_rejections_total",
			Help: "Transactions rejected before execution, by reason",
		}, []string{"reason"}),
		durationHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "token_launcher_tx_confirmation_seconds",
			Help:    "Time from broadcast to terminal status",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submissions, m.rejections, m.durationHistogram)
	}
	return m
}

func (m *Metrics) TrackOutcome(outcome Outcome, start time.Time) {
	m.submissions.WithLabelValues(string(outcome)).Inc()
	m.durationHistogram.Observe(time.Since(start).Seconds())
}

func (m *Metrics) TrackRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}
