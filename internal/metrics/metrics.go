// Package metrics exports tap runner engine activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/taprunner/internal/games/taprunner"
)

// Metrics holds the collectors fed by engine events. Safe for concurrent
// use by many sessions.
type Metrics struct {
	registry *prometheus.Registry

	mu   sync.Mutex
	best int

	SessionsStarted prometheus.Counter
	Flaps           prometheus.Counter
	Points          prometheus.Counter
	Rewards         prometheus.Counter
	Restarts        prometheus.Counter
	GameOvers       *prometheus.CounterVec
	RunScores       prometheus.Histogram
	BestScore       prometheus.Gauge
	ActiveSessions  prometheus.Gauge
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "sessions_started_total",
			Help:      "Sessions that left the ready state.",
		}),
		Flaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "flaps_total",
			Help:      "Upward impulses applied.",
		}),
		Points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "points_scored_total",
			Help:      "Obstacle pairs passed.",
		}),
		Rewards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "rewards_total",
			Help:      "Sessions that reached the reward threshold.",
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "restarts_total",
			Help:      "Restarts from the game over screen.",
		}),
		GameOvers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taprunner",
			Name:      "game_overs_total",
			Help:      "Finished sessions by reason.",
		}, []string{"reason"}),
		RunScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taprunner",
			Name:      "run_score",
			Help:      "Score of finished sessions.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taprunner",
			Name:      "best_score",
			Help:      "Highest score seen by this process.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taprunner",
			Name:      "active_sessions",
			Help:      "Connected play sessions.",
		}),
	}

	m.registry.MustRegister(
		m.SessionsStarted,
		m.Flaps,
		m.Points,
		m.Rewards,
		m.Restarts,
		m.GameOvers,
		m.RunScores,
		m.BestScore,
		m.ActiveSessions,
	)
	return m
}

// Observe records the events of one tick.
func (m *Metrics) Observe(snap taprunner.Snapshot) {
	if m == nil {
		return
	}
	for _, ev := range snap.Events {
		switch ev.Kind {
		case taprunner.EventStarted:
			m.SessionsStarted.Inc()
		case taprunner.EventFlapped:
			m.Flaps.Inc()
		case taprunner.EventScored:
			m.Points.Inc()
		case taprunner.EventRewardReached:
			m.Rewards.Inc()
		case taprunner.EventRestarted:
			m.Restarts.Inc()
		case taprunner.EventGameOver:
			m.GameOvers.WithLabelValues(ev.Reason.String()).Inc()
			m.RunScores.Observe(float64(ev.Score))
		case taprunner.EventBestImproved:
			m.observeBest(ev.Score)
		}
	}
}

// SetBest raises the best score gauge to at least v.
func (m *Metrics) SetBest(v int) {
	if m == nil {
		return
	}
	m.observeBest(v)
}

// observeBest keeps the gauge at the maximum reported by any session.
func (m *Metrics) observeBest(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v > m.best {
		m.best = v
		m.BestScore.Set(float64(v))
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
