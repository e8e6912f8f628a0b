package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// APIVersion is reported by GET /info.
const APIVersion = "0.1.0"

// Engine defines the subset of the dashgrid engine the HTTP surface drives.
type Engine interface {
	Layout() domain.LayoutSnapshot
	Zone(zoneID string) (domain.Zone, bool)
	MoveComponent(componentID, fromZoneID, toZoneID string) error
	AddZone(width domain.Width, initial ...string) (string, error)
	RemoveZone(zoneID string) error
	ChangeZoneWidth(zoneID string, width domain.Width) error
	RestoreLayout(snap domain.LayoutSnapshot) error
	GetComponent(componentID string) (domain.ComponentDescriptor, bool)
	OnLayoutChanged(fn func(*domain.LayoutEvent)) dashgrid.Subscription

	RegisterRegion(r domain.Region)
	UnregisterRegion(id string)
	HitTest(p domain.Point) (string, bool)

	PointerDown(g domain.Grab) bool
	PointerMove(p domain.Point)
	PointerUp(p domain.Point)
	Session() (domain.SessionSnapshot, bool)
	State() domain.SessionState
	CancelDrag() bool
	Policy() domain.ActivationPolicy
}

var errBadRequest = errors.New("bad request")

// Server serves an Engine over JSON/HTTP.
type Server struct {
	Engine  Engine
	metrics http.Handler
	logger  *slog.Logger
	version string
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts a metrics handler under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the application version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop(), version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/layout", func(r chi.Router) {
		r.Get("/", s.GetLayout)
		r.Put("/", s.PutLayout)
		r.Get("/events", s.SubscribeLayout)
	})
	r.Route("/zones", func(r chi.Router) {
		r.Post("/", s.AddZone)
		r.Get("/{zoneID}", s.GetZone)
		r.Delete("/{zoneID}", s.RemoveZone)
		r.Put("/{zoneID}/width", s.ChangeZoneWidth)
	})
	r.Post("/moves", s.Move)
	r.Get("/components/{componentID}", s.GetComponent)

	r.Route("/regions", func(r chi.Router) {
		r.Put("/", s.RegisterRegion)
		r.Delete("/{regionID}", s.UnregisterRegion)
	})
	r.Get("/hit", s.HitTest)

	r.Route("/pointer", func(r chi.Router) {
		r.Post("/down", s.PointerDown)
		r.Post("/move", s.PointerMove)
		r.Post("/up", s.PointerUp)
	})
	r.Get("/session", s.GetSession)
	r.Delete("/session", s.CancelSession)

	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "dashgrid-http",
		"version":     s.version,
		"api_version": APIVersion,
	})
}

// GetLayout handles GET /layout.
func (s *Server) GetLayout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Layout())
}

// PutLayout handles PUT /layout, replacing the whole layout.
func (s *Server) PutLayout(w http.ResponseWriter, r *http.Request) {
	var snap domain.LayoutSnapshot
	if !s.decode(w, r, &snap) {
		return
	}
	if err := s.Engine.RestoreLayout(snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Layout())
}

// GetZone handles GET /zones/{zoneID}.
func (s *Server) GetZone(w http.ResponseWriter, r *http.Request) {
	zone, ok := s.Engine.Zone(chi.URLParam(r, "zoneID"))
	if !ok {
		s.writeError(w, domain.ErrUnknownZone)
		return
	}
	s.writeJSON(w, http.StatusOK, zone)
}

// AddZoneRequest is the body of POST /zones.
type AddZoneRequest struct {
	Width      domain.Width `json:"width"`
	Components []string     `json:"components,omitempty"`
}

// AddZone handles POST /zones.
func (s *Server) AddZone(w http.ResponseWriter, r *http.Request) {
	var body AddZoneRequest
	if !s.decode(w, r, &body) {
		return
	}
	id, err := s.Engine.AddZone(body.Width, body.Components...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	zone, _ := s.Engine.Zone(id)
	s.writeJSON(w, http.StatusCreated, zone)
}

// RemoveZone handles DELETE /zones/{zoneID}.
func (s *Server) RemoveZone(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.RemoveZone(chi.URLParam(r, "zoneID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WidthRequest is the body of PUT /zones/{zoneID}/width.
type WidthRequest struct {
	Width domain.Width `json:"width"`
}

// ChangeZoneWidth handles PUT /zones/{zoneID}/width.
func (s *Server) ChangeZoneWidth(w http.ResponseWriter, r *http.Request) {
	var body WidthRequest
	if !s.decode(w, r, &body) {
		return
	}
	zoneID := chi.URLParam(r, "zoneID")
	if err := s.Engine.ChangeZoneWidth(zoneID, body.Width); err != nil {
		s.writeError(w, err)
		return
	}
	zone, _ := s.Engine.Zone(zoneID)
	s.writeJSON(w, http.StatusOK, zone)
}

// MoveRequest is the body of POST /moves.
type MoveRequest struct {
	ComponentID string `json:"component_id"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// Move handles POST /moves.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	var body MoveRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.ComponentID == "" {
		s.writeError(w, fmt.Errorf("%w: component_id is required", errBadRequest))
		return
	}
	if err := s.Engine.MoveComponent(body.ComponentID, body.From, body.To); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Layout())
}

// GetComponent handles GET /components/{componentID}.
func (s *Server) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "componentID")
	desc, ok := s.Engine.GetComponent(id)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown component %q", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, desc)
}

// RegisterRegion handles PUT /regions.
func (s *Server) RegisterRegion(w http.ResponseWriter, r *http.Request) {
	var region domain.Region
	if !s.decode(w, r, &region) {
		return
	}
	if region.ID == "" {
		s.writeError(w, fmt.Errorf("%w: region id is required", errBadRequest))
		return
	}
	s.Engine.RegisterRegion(region)
	w.WriteHeader(http.StatusNoContent)
}

// UnregisterRegion handles DELETE /regions/{regionID}.
func (s *Server) UnregisterRegion(w http.ResponseWriter, r *http.Request) {
	s.Engine.UnregisterRegion(chi.URLParam(r, "regionID"))
	w.WriteHeader(http.StatusNoContent)
}

// HitResponse is the body of GET /hit.
type HitResponse struct {
	ZoneID string `json:"zone_id,omitempty"`
	Hit    bool   `json:"hit"`
}

// HitTest handles GET /hit?x=..&y=..
func (s *Server) HitTest(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	zoneID, ok := s.Engine.HitTest(p)
	s.writeJSON(w, http.StatusOK, HitResponse{ZoneID: zoneID, Hit: ok})
}

// PointerDownResponse is the body returned by POST /pointer/down.
type PointerDownResponse struct {
	Accepted bool                    `json:"accepted"`
	Session  *domain.SessionSnapshot `json:"session,omitempty"`
}

// PointerDown handles POST /pointer/down.
func (s *Server) PointerDown(w http.ResponseWriter, r *http.Request) {
	var grab domain.Grab
	if !s.decode(w, r, &grab) {
		return
	}
	resp := PointerDownResponse{Accepted: s.Engine.PointerDown(grab)}
	if snap, ok := s.Engine.Session(); ok && resp.Accepted {
		resp.Session = &snap
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// PointerMove handles POST /pointer/move.
func (s *Server) PointerMove(w http.ResponseWriter, r *http.Request) {
	var p domain.Point
	if !s.decode(w, r, &p) {
		return
	}
	s.Engine.PointerMove(p)
	s.GetSession(w, r)
}

// PointerUp handles POST /pointer/up.
func (s *Server) PointerUp(w http.ResponseWriter, r *http.Request) {
	var p domain.Point
	if !s.decode(w, r, &p) {
		return
	}
	s.Engine.PointerUp(p)
	s.writeJSON(w, http.StatusOK, s.Engine.Layout())
}

// SessionResponse is the body of GET /session.
type SessionResponse struct {
	State   domain.SessionState     `json:"state"`
	Session *domain.SessionSnapshot `json:"session,omitempty"`
	Preview *domain.Point           `json:"preview,omitempty"`
}

// GetSession handles GET /session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{State: s.Engine.State()}
	if snap, ok := s.Engine.Session(); ok {
		origin := snap.PreviewOrigin()
		resp.State = snap.State
		resp.Session = &snap
		resp.Preview = &origin
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// CancelSession handles DELETE /session.
func (s *Server) CancelSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"cancelled": s.Engine.CancelDrag()})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownZone), errors.Is(err, domain.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrComponentPlaced), errors.Is(err, domain.ErrDuplicateZoneID):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidWidth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryPoint(r *http.Request) (domain.Point, error) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("%w: x: %v", errBadRequest, err)
	}
	y, err := strconv.ParseFloat(q.Get("y"), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("%w: y: %v", errBadRequest, err)
	}
	return domain.Point{X: x, Y: y}, nil
}
