package ddns

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cycles          prometheus.Counter
	ipFetchFailures prometheus.Counter
	lastResolved    prometheus.Gauge
	records         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ddns",
			Name:      "cycles_total",
			Help:      "Number of reconciliation cycles started.",
		}),
		ipFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ddns",
			Name:      "ip_fetch_failures_total",
			Help:      "Number of cycles skipped because the public IP could not be resolved.",
		}),
		lastResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ddns",
			Name:      "last_resolved_timestamp_seconds",
			Help:      "Unix time of the last successful public IP lookup.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ddns",
			Name:      "record_reconciliations_total",
			Help:      "Number of per-domain reconciliations by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{m.cycles, m.ipFetchFailures, m.lastResolved, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) cycleStarted() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}

func (m *Metrics) ipFetchFailed() {
	if m == nil {
		return
	}
	m.ipFetchFailures.Inc()
}

func (m *Metrics) ipResolved() {
	if m == nil {
		return
	}
	m.lastResolved.Set(float64(time.Now().Unix()))
}

func (m *Metrics) recordOutcome(o Outcome) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(o.String()).Inc()
}
