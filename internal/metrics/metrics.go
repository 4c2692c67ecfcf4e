// Package metrics exposes the valve state as prometheus metrics.
package metrics

import (
	"irrigation_valve/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// TrustSource reports whether the wall clock is synchronized.
type TrustSource interface {
	Trusted() bool
}

// Metrics is a controller observer and a prometheus.Collector.
type Metrics struct {
	clock             TrustSource
	energized         prometheus.Gauge
	overheatProtected prometheus.Gauge
	modeManual        prometheus.Gauge
	clockTrusted      prometheus.Gauge
	transitions       *prometheus.CounterVec
	persistFailures   prometheus.Counter
	relayErrors       prometheus.Counter
}

// NewMetrics reads clock trust from clk on every scrape. With a nil clk the gauge
// follows the last transition.
func NewMetrics(clk TrustSource) *Metrics {
	return &Metrics{
		clock: clk,
		energized: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName("valve", "", "energized"),
			Help: "1 if the valve relay is energized",
		}),
		overheatProtected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName("valve", "", "overheat_protected"),
			Help: "1 if the valve is in its overheat cooldown",
		}),
		modeManual: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName("valve", "mode", "manual"),
			Help: "1 if the valve is in manual mode, 0 if automatic",
		}),
		clockTrusted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName("valve", "clock", "trusted"),
			Help: "1 if the wall clock is synchronized",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("valve", "", "transitions_total"),
			Help: "Committed valve state transitions, by reason",
		}, []string{"reason"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("valve", "", "persist_failures_total"),
			Help: "Valve state writes that failed or timed out",
		}),
		relayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("valve", "", "relay_errors_total"),
			Help: "Relay actuation errors",
		}),
	}
}

func boolGauge(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
		return
	}
	g.Set(0)
}

func (m *Metrics) StateChanged(st models.Status, reason string) {
	boolGauge(m.energized, st.Energized)
	boolGauge(m.overheatProtected, st.OverheatProtected)
	boolGauge(m.modeManual, st.Mode == models.ModeManual)
	boolGauge(m.clockTrusted, st.ClockTrusted)
	m.transitions.WithLabelValues(reason).Inc()
}

func (m *Metrics) PersistFailed(error) {
	m.persistFailures.Inc()
}

func (m *Metrics) RelayFailed(error) {
	m.relayErrors.Inc()
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.energized.Describe(ch)
	m.overheatProtected.Describe(ch)
	m.modeManual.Describe(ch)
	m.clockTrusted.Describe(ch)
	m.transitions.Describe(ch)
	m.persistFailures.Describe(ch)
	m.relayErrors.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	if m.clock != nil {
		boolGauge(m.clockTrusted, m.clock.Trusted())
	}
	m.energized.Collect(ch)
	m.overheatProtected.Collect(ch)
	m.modeManual.Collect(ch)
	m.clockTrusted.Collect(ch)
	m.transitions.Collect(ch)
	m.persistFailures.Collect(ch)
	m.relayErrors.Collect(ch)
}
