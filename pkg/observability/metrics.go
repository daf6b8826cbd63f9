package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tgquest"

// Metrics holds the engine and transport collectors.
type Metrics struct {
	registry *prometheus.Registry

	screenVisits   *prometheus.CounterVec
	sandboxResets  prometheus.Counter
	scriptErrors   *prometheus.CounterVec
	updates        *prometheus.CounterVec
	updateDuration prometheus.Histogram
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		screenVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "screen_visits_total",
				Help:      "Total number of screen renders.",
			},
			[]string{"screen", "language"},
		),
		sandboxResets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sandbox_resets_total",
				Help:      "Total number of script sandboxes created by quest screens.",
			},
		),
		scriptErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "script_errors_total",
				Help:      "Total number of failed screen scripts.",
			},
			[]string{"screen", "phase"},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Total number of inbound updates by outcome.",
			},
			[]string{"outcome"},
		),
		updateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "update_duration_seconds",
				Help:      "Time spent handling one inbound update, delivery included.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	m.registry.MustRegister(
		m.screenVisits,
		m.sandboxResets,
		m.scriptErrors,
		m.updates,
		m.updateDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterSessions exposes the live session count through fn.
func (m *Metrics) RegisterSessions(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of user sessions held in memory.",
		},
		func() float64 { return float64(fn()) },
	))
}

// ObserveUpdate records one processed update. outcome is e.g. "ok", "ignored" or "error".
func (m *Metrics) ObserveUpdate(outcome string, took time.Duration) {
	m.updates.WithLabelValues(outcome).Inc()
	m.updateDuration.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks feeding the metrics and, when logger is not nil, debug logs.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	debug := func(ctx context.Context, msg string, args ...any) {
		if logger != nil {
			logger.DebugContext(ctx, msg, args...)
		}
	}

	return domain.LifecycleHooks{
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			m.screenVisits.WithLabelValues(e.ScreenID, e.Language).Inc()
			debug(ctx, "screen_enter", "user_id", e.UserID, "screen", e.ScreenID, "language", e.Language)
		},
		OnScreenLeave: func(ctx context.Context, e *domain.ScreenEvent) {
			debug(ctx, "screen_leave", "user_id", e.UserID, "screen", e.ScreenID)
		},
		OnSandboxReset: func(ctx context.Context, e *domain.ScreenEvent) {
			m.sandboxResets.Inc()
			debug(ctx, "sandbox_reset", "user_id", e.UserID, "screen", e.ScreenID)
		},
		OnScriptError: func(ctx context.Context, e *domain.ScriptEvent) {
			m.scriptErrors.WithLabelValues(e.ScreenID, e.Phase).Inc()
			debug(ctx, "script_error", "user_id", e.UserID, "screen", e.ScreenID, "phase", e.Phase, "err", e.Err)
		},
	}
}
