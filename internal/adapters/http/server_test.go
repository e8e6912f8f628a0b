package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *dashgrid.Engine {
	t.Helper()
	eng, err := dashgrid.New([]domain.ZoneDescriptor{
		{ID: "left", Width: domain.TokenWidth(domain.WidthMedium), Components: []string{"clock", "weather"}},
		{ID: "right", Width: domain.TokenWidth(domain.WidthMedium), Components: []string{"news"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(newTestEngine(t))

	rr := do(t, handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := NewHandler(newTestEngine(t), WithVersion("1.2.3"))

	rr := do(t, handler, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "dashgrid-http", resp["app"])
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, APIVersion, resp["api_version"])
}

func TestLayoutMutations(t *testing.T) {
	eng := newTestEngine(t)
	handler := NewHandler(eng)

	rr := do(t, handler, http.MethodPost, "/moves", `{"component_id":"clock","from":"left","to":"right"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"news", "clock"}, eng.Layout().Zones["right"].Components)

	rr = do(t, handler, http.MethodPost, "/zones", `{"width":"large","components":["stocks"]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var zone domain.Zone
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &zone))
	assert.Equal(t, []string{"stocks"}, zone.Components)

	rr = do(t, handler, http.MethodPut, "/zones/"+zone.ID+"/width", `{"width":320}`)
	require.Equal(t, http.StatusOK, rr.Code)
	z, ok := eng.Zone(zone.ID)
	require.True(t, ok)
	assert.Equal(t, domain.CustomWidth(320), z.Width)

	rr = do(t, handler, http.MethodDelete, "/zones/"+zone.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"left", "right"}, eng.Layout().Order)

	rr = do(t, handler, http.MethodGet, "/layout", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap domain.LayoutSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.True(t, snap.Equal(eng.Layout()))
}

func TestErrorMapping(t *testing.T) {
	handler := NewHandler(newTestEngine(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown zone", http.MethodGet, "/zones/nope", "", http.StatusNotFound},
		{"move to unknown zone", http.MethodPost, "/moves", `{"component_id":"clock","from":"left","to":"nope"}`, http.StatusNotFound},
		{"component already placed", http.MethodPost, "/zones", `{"width":"small","components":["news"]}`, http.StatusConflict},
		{"invalid width", http.MethodPut, "/zones/left/width", `{"width":"huge"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/moves", `{`, http.StatusBadRequest},
		{"missing component", http.MethodPost, "/moves", `{"from":"left","to":"right"}`, http.StatusBadRequest},
		{"bad hit query", http.MethodGet, "/hit?x=a&y=1", "", http.StatusBadRequest},
		{"unknown component", http.MethodGet, "/components/clock", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, handler, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestPointerFlow(t *testing.T) {
	eng := newTestEngine(t)
	handler := NewHandler(eng)

	require.Equal(t, http.StatusNoContent,
		do(t, handler, http.MethodPut, "/regions", `{"id":"left","bounds":{"x":0,"y":0,"width":100,"height":100}}`).Code)
	require.Equal(t, http.StatusNoContent,
		do(t, handler, http.MethodPut, "/regions", `{"id":"right","bounds":{"x":100,"y":0,"width":100,"height":100}}`).Code)

	rr := do(t, handler, http.MethodGet, "/hit?x=150&y=50", "")
	var hit HitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hit))
	assert.Equal(t, HitResponse{ZoneID: "right", Hit: true}, hit)

	rr = do(t, handler, http.MethodPost, "/pointer/down",
		`{"component_id":"weather","zone_id":"left","pointer":{"x":20,"y":20},"origin":{"x":10,"y":10}}`)
	var down PointerDownResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &down))
	require.True(t, down.Accepted)
	assert.Equal(t, domain.StateDragging, down.Session.State)

	rr = do(t, handler, http.MethodPost, "/pointer/move", `{"x":150,"y":50}`)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	assert.Equal(t, "right", sess.Session.HoveredZone)
	assert.Equal(t, domain.Point{X: 140, Y: 40}, *sess.Preview)

	rr = do(t, handler, http.MethodPost, "/pointer/up", `{"x":150,"y":50}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"news", "weather"}, eng.Layout().Zones["right"].Components)
	assert.Equal(t, domain.StateIdle, eng.State())

	rr = do(t, handler, http.MethodDelete, "/session", "")
	assert.JSONEq(t, `{"cancelled":false}`, rr.Body.String())
}

func TestSubscribeLayout(t *testing.T) {
	eng := newTestEngine(t)
	srv := httptest.NewServer(NewHandler(eng))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/layout/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, _ := next()
	assert.Equal(t, "snapshot", name)

	require.NoError(t, eng.MoveComponent("news", "right", "left"))

	name, data := next()
	assert.Equal(t, "layout", name)
	var evt domain.LayoutEvent
	require.NoError(t, json.Unmarshal([]byte(data), &evt))
	assert.Equal(t, domain.OpMove, evt.Op)
	assert.Equal(t, "news", evt.Component)
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("dashgrid_zones 2\n"))
	})
	handler := NewHandler(newTestEngine(t), WithMetrics(metrics))

	rr := do(t, handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dashgrid_zones")
}
