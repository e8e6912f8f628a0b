package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

type metricsMiddleware struct {
	next     ports.SnapshotStore
	duration *prometheus.HistogramVec
}

// NewMetricsMiddleware records the latency and result of every store call on reg.
// Results are "ok", "not_found" or "error".
func NewMetricsMiddleware(reg prometheus.Registerer) Middleware {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashgrid_snapshot_store_duration_seconds",
		Help:    "Snapshot store call latency, by operation and result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "result"})
	if err := reg.Register(duration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			panic(err)
		}
		duration = already.ExistingCollector.(*prometheus.HistogramVec)
	}

	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &metricsMiddleware{next: next, duration: duration}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrLayoutNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.duration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	start := time.Now()
	err := m.next.Save(ctx, layoutID, snap)
	m.observe("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	start := time.Now()
	snap, err := m.next.Load(ctx, layoutID)
	m.observe("load", start, err)
	return snap, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, layoutID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, layoutID)
	m.observe("delete", start, err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe("list", start, err)
	return ids, err
}
