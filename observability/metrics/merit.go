package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MeritMetrics tracks ledger activity for the merit engine.
type MeritMetrics struct {
	credits       *prometheus.CounterVec
	boosts        prometheus.Counter
	claims        prometheus.Counter
	currentPeriod prometheus.Gauge
}

var (
	meritOnce     sync.Once
	meritRegistry *MeritMetrics
)

// Merit returns the lazily-initialised merit metrics registry.
func Merit() *MeritMetrics {
	meritOnce.Do(func() {
		meritRegistry = &MeritMetrics{
			credits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "merit_credits_total",
				Help: "Count of merit point credits by source tag.",
			}, []string{"source"}),
			boosts: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "merit_boosts_total",
				Help: "Count of accepted paid totem boosts.",
			}),
			claims: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "merit_claims_total",
				Help: "Count of settled pro-rata emission claims.",
			}),
			currentPeriod: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "merit_current_period",
				Help: "Most recently settled-to period index.",
			}),
		}
		prometheus.MustRegister(
			meritRegistry.credits,
			meritRegistry.boosts,
			meritRegistry.claims,
			meritRegistry.currentPeriod,
		)
	})
	return meritRegistry
}

func (m *MeritMetrics) ObserveCredit(source string) {
	if m == nil {
		return
	}
	m.credits.WithLabelValues(source).Inc()
}

func (m *MeritMetrics) ObserveBoost() {
	if m == nil {
		return
	}
	m.boosts.Inc()
}

func (m *MeritMetrics) ObserveClaim() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

func (m *MeritMetrics) SetCurrentPeriod(period float64) {
	if m == nil {
		return
	}
	m.currentPeriod.Set(period)
}
