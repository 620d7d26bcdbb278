package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionEvents   *prometheus.CounterVec
	Turns           *prometheus.CounterVec
	TurnLatency     prometheus.Histogram
	LLMRequests     *prometheus.CounterVec
	GeneratorParses *prometheus.CounterVec
	WSMessages      *prometheus.CounterVec

	stageWindow *turnStageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		stageWindow: newTurnStageWindow(256),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active quiz sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed dialogue turns by routed decision.",
		}, []string{"decision"}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "End-to-end dialogue turn latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000},
		}),
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Completion-model requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		GeneratorParses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_parses_total",
			Help:      "Structured-generator parse attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Milliseconds()))
}

// ObserveStage records one voice-turn stage duration in the rolling
// latency window served by the perf endpoint.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil || m.stageWindow == nil {
		return
	}
	m.stageWindow.Observe(stage, float64(d.Microseconds())/1000)
}

// ObserveTurnIndicator counts a notable turn outcome, such as a reply
// degraded to text after a synthesis failure.
func (m *Metrics) ObserveTurnIndicator(name string) {
	if m == nil {
		return
	}
	m.stageWindow.ObserveIndicator(name)
}

func (m *Metrics) SnapshotTurnStages() TurnStageSnapshot {
	if m == nil || m.stageWindow == nil {
		return TurnStageSnapshot{}
	}
	return m.stageWindow.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
