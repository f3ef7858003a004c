package api

import (
	"net/http"

	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry             *prometheus.Registry
	playersRegistered    prometheus.Counter
	roundsStartedCounter prometheus.Counter
	roundsSettled        *prometheus.CounterVec
	activeSessionsGauge  prometheus.Gauge
}

// NewMetrics registers the game metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		playersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "players_registered_total",
			Help: "Total number of players registered",
		}),
		roundsStartedCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: "rounds_started_total",
			Help: "Total number of rounds dealt",
		}),
		roundsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rounds_settled_total",
			Help: "Total number of rounds settled by outcome",
		}, []string{"outcome"}),
		activeSessionsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Count of sessions held in the session store",
		}),
	}
}

func (m *Metrics) PlayerRegistered() {
	m.playersRegistered.Inc()
}

func (m *Metrics) RoundStarted() {
	m.roundsStartedCounter.Inc()
}

func (m *Metrics) RoundSettled(o game.Outcome) {
	m.roundsSettled.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) SetActiveSessions(count int) {
	m.activeSessionsGauge.Set(float64(count))
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
