package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/internal/activation"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...dashgrid.Option) *dashgrid.Engine {
	t.Helper()
	eng, err := dashgrid.New([]domain.ZoneDescriptor{
		{ID: "z1", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"a"}},
		{ID: "z2", Width: domain.TokenWidth(domain.WidthSmall)},
	}, opts...)
	require.NoError(t, err)
	eng.RegisterZoneBounds("z1", domain.Rect{Width: 100, Height: 100})
	eng.RegisterZoneBounds("z2", domain.Rect{X: 100, Width: 100, Height: 100})
	return eng
}

func TestMetrics_DragLifecycle(t *testing.T) {
	m := observability.NewMetrics()
	timer := activation.NewManual()
	eng := newEngine(t,
		dashgrid.WithActivation(domain.Delayed(time.Second)),
		dashgrid.WithTimer(timer),
		dashgrid.WithLifecycleHooks(m.Hooks()),
	)
	m.ObserveLayout(eng.Layout())

	// Cancelled long-press.
	eng.PointerDown(domain.Grab{ComponentID: "a", ZoneID: "z1"})
	eng.PointerUp(domain.Point{})

	// Committed drag.
	eng.PointerDown(domain.Grab{ComponentID: "a", ZoneID: "z1"})
	timer.Advance(time.Second)
	eng.PointerMove(domain.Point{X: 150, Y: 10})
	eng.PointerUp(domain.Point{X: 150, Y: 10})

	reg := m.Registry()
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "dashgrid_layout_changes_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "dashgrid_drag_sessions_ended_total"), "one series per outcome")
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "dashgrid_drag_session_duration_seconds"))

	metricsServer := httptest.NewServer(m.Handler())
	defer metricsServer.Close()
	resp, err := http.Get(metricsServer.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics_Gauges(t *testing.T) {
	m := observability.NewMetrics()
	eng := newEngine(t, dashgrid.WithLifecycleHooks(m.Hooks()))
	m.ObserveLayout(eng.Layout())

	_, err := eng.AddZone(domain.TokenWidth(domain.WidthLarge), "b")
	require.NoError(t, err)

	expected := `
# HELP dashgrid_zones Zones in the current layout.
# TYPE dashgrid_zones gauge
dashgrid_zones 3
# HELP dashgrid_components Components placed in the current layout.
# TYPE dashgrid_components gauge
dashgrid_components 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), stringsReader(expected), "dashgrid_zones", "dashgrid_components"))
}
