package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vovakirdan/taprunner/internal/games/taprunner"
)

func TestObserveEvents(t *testing.T) {
	m := New()

	m.Observe(taprunner.Snapshot{Events: []taprunner.Event{
		{Kind: taprunner.EventStarted},
		{Kind: taprunner.EventFlapped},
	}})
	m.Observe(taprunner.Snapshot{Events: []taprunner.Event{
		{Kind: taprunner.EventScored, Score: 1},
		{Kind: taprunner.EventBestImproved, Score: 1},
	}})
	m.Observe(taprunner.Snapshot{Events: []taprunner.Event{
		{Kind: taprunner.EventGameOver, Score: 1, Reason: taprunner.ReasonObstacle},
	}})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"sessions", testutil.ToFloat64(m.SessionsStarted), 1},
		{"flaps", testutil.ToFloat64(m.Flaps), 1},
		{"points", testutil.ToFloat64(m.Points), 1},
		{"best", testutil.ToFloat64(m.BestScore), 1},
		{"obstacle deaths", testutil.ToFloat64(m.GameOvers.WithLabelValues("obstacle")), 1},
		{"floor deaths", testutil.ToFloat64(m.GameOvers.WithLabelValues("floor")), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestBestScoreGaugeOnlyRises(t *testing.T) {
	m := New()
	m.SetBest(9)
	m.SetBest(4)
	if got := testutil.ToFloat64(m.BestScore); got != 9 {
		t.Errorf("best = %v, want 9", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe(taprunner.Snapshot{Events: []taprunner.Event{{Kind: taprunner.EventFlapped}}})
	m.SetBest(3)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Flaps.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "taprunner_flaps_total 1") {
		t.Errorf("metrics output missing flaps counter:\n%s", body)
	}
}
