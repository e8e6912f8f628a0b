package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records drag and layout activity as Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	gestures      *prometheus.CounterVec
	drops         *prometheus.CounterVec
	dragDuration  *prometheus.HistogramVec
	hoverChanges  prometheus.Counter
	layoutChanges *prometheus.CounterVec
	zones         prometheus.Gauge
	components    prometheus.Gauge

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashgrid_gestures_started_total",
			Help: "Gestures started, by the state they entered.",
		}, []string{"state"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashgrid_drag_sessions_ended_total",
			Help: "Drag sessions ended, by outcome.",
		}, []string{"outcome"}),
		dragDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashgrid_drag_session_duration_seconds",
			Help:    "Time from pointer-down to session end.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"outcome"}),
		hoverChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashgrid_hover_changes_total",
			Help: "Hovered-zone changes while dragging.",
		}),
		layoutChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashgrid_layout_changes_total",
			Help: "Layout mutations, by operation.",
		}, []string{"op"}),
		zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashgrid_zones",
			Help: "Zones in the current layout.",
		}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashgrid_components",
			Help: "Components placed in the current layout.",
		}),
		started: make(map[string]time.Time),
	}
	m.registry.MustRegister(m.gestures, m.drops, m.dragDuration, m.hoverChanges,
		m.layoutChanges, m.zones, m.components)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLayout sets the gauges from a snapshot, e.g. the initial layout.
func (m *Metrics) ObserveLayout(snap domain.LayoutSnapshot) {
	m.zones.Set(float64(len(snap.Order)))
	m.components.Set(float64(snap.ComponentCount()))
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	begin := func(e *domain.DragEvent) {
		m.gestures.WithLabelValues(string(e.Session.State)).Inc()
		m.mu.Lock()
		if _, ok := m.started[e.Session.ID]; !ok {
			m.started[e.Session.ID] = e.Session.StartedAt
		}
		m.mu.Unlock()
	}
	return domain.LifecycleHooks{
		OnPressStart: begin,
		OnDragStart:  begin,
		OnHoverChange: func(*domain.DragEvent) {
			m.hoverChanges.Inc()
		},
		OnDragEnd: func(e *domain.DragEvent) {
			outcome := string(e.Outcome)
			m.drops.WithLabelValues(outcome).Inc()
			m.mu.Lock()
			start, ok := m.started[e.Session.ID]
			delete(m.started, e.Session.ID)
			m.mu.Unlock()
			if ok {
				m.dragDuration.WithLabelValues(outcome).Observe(e.Timestamp.Sub(start).Seconds())
			}
		},
		OnLayoutChanged: func(e *domain.LayoutEvent) {
			m.layoutChanges.WithLabelValues(string(e.Op)).Inc()
			m.ObserveLayout(e.Snapshot)
		},
	}
}
