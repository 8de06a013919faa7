package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BoostMetrics tracks streak and randomized-reward activity for the boost
// engine.
type BoostMetrics struct {
	boosts        *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	graceDays     prometheus.Counter
	badges        prometheus.Counter
	fulfillments  prometheus.Counter
	pendingRandom prometheus.Gauge
}

var (
	boostOnce     sync.Once
	boostRegistry *BoostMetrics
)

// Boost returns the lazily-initialised boost metrics registry.
func Boost() *BoostMetrics {
	boostOnce.Do(func() {
		boostRegistry = &BoostMetrics{
			boosts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "boost_accepted_total",
				Help: "Count of accepted boosts by kind (free or premium).",
			}, []string{"kind"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "boost_rejected_total",
				Help: "Count of rejected boosts by kind and reason.",
			}, []string{"kind", "reason"}),
			graceDays: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "boost_grace_days_granted_total",
				Help: "Count of grace days granted across all users.",
			}),
			badges: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "boost_badges_released_total",
				Help: "Count of milestone badge credits released.",
			}),
			fulfillments: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "boost_random_fulfilled_total",
				Help: "Count of fulfilled randomness requests.",
			}),
			pendingRandom: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "boost_random_pending",
				Help: "Number of randomness requests awaiting fulfillment.",
			}),
		}
		prometheus.MustRegister(
			boostRegistry.boosts,
			boostRegistry.rejections,
			boostRegistry.graceDays,
			boostRegistry.badges,
			boostRegistry.fulfillments,
			boostRegistry.pendingRandom,
		)
	})
	return boostRegistry
}

func (m *BoostMetrics) ObserveBoost(kind string) {
	if m == nil {
		return
	}
	m.boosts.WithLabelValues(kind).Inc()
}

func (m *BoostMetrics) ObserveRejection(kind, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind, reason).Inc()
}

func (m *BoostMetrics) ObserveGraceDay() {
	if m == nil {
		return
	}
	m.graceDays.Inc()
}

func (m *BoostMetrics) ObserveBadges(count uint64) {
	if m == nil {
		return
	}
	m.badges.Add(float64(count))
}

func (m *BoostMetrics) ObserveFulfillment() {
	if m == nil {
		return
	}
	m.fulfillments.Inc()
}

func (m *BoostMetrics) SetPendingRandom(count float64) {
	if m == nil {
		return
	}
	m.pendingRandom.Set(count)
}
