package observability

import (
	"context"
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/dashgrid"

// Tracer records one span per drag session, from pointer-down to session end.
// Hover changes become span events; layout mutations become short spans of their own.
type Tracer struct {
	tracer oteltrace.Tracer

	mu    sync.Mutex
	spans map[string]oteltrace.Span
}

// NewTracer creates a Tracer on the given provider.
func NewTracer(provider oteltrace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: provider.Tracer(tracerName),
		spans:  make(map[string]oteltrace.Span),
	}
}

// Hooks returns lifecycle hooks that emit spans.
func (t *Tracer) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPressStart: t.begin,
		OnDragStart: func(e *domain.DragEvent) {
			if span, ok := t.span(e.Session.ID); ok {
				span.AddEvent("activated", oteltrace.WithTimestamp(e.Timestamp))
				return
			}
			t.begin(e)
		},
		OnHoverChange: func(e *domain.DragEvent) {
			if span, ok := t.span(e.Session.ID); ok {
				span.AddEvent("hover",
					oteltrace.WithTimestamp(e.Timestamp),
					oteltrace.WithAttributes(
						attribute.String("dashgrid.zone.id", e.Session.HoveredZone),
						attribute.Bool("dashgrid.hovering", e.Session.Hovering),
					))
			}
		},
		OnDragEnd: t.end,
		OnLayoutChanged: func(e *domain.LayoutEvent) {
			_, span := t.tracer.Start(context.Background(), "layout."+string(e.Op),
				oteltrace.WithTimestamp(e.Timestamp),
				oteltrace.WithAttributes(
					attribute.String("dashgrid.zone.id", e.ZoneID),
					attribute.String("dashgrid.component.id", e.Component),
					attribute.Int("dashgrid.zones", len(e.Snapshot.Order)),
				))
			span.End(oteltrace.WithTimestamp(e.Timestamp))
		},
	}
}

func (t *Tracer) begin(e *domain.DragEvent) {
	_, span := t.tracer.Start(context.Background(), "drag.session",
		oteltrace.WithTimestamp(e.Session.StartedAt),
		oteltrace.WithAttributes(
			attribute.String("dashgrid.session.id", e.Session.ID),
			attribute.String("dashgrid.component.id", e.Session.ComponentID),
			attribute.String("dashgrid.source_zone.id", e.Session.SourceZoneID),
		))
	t.mu.Lock()
	t.spans[e.Session.ID] = span
	t.mu.Unlock()
}

func (t *Tracer) end(e *domain.DragEvent) {
	t.mu.Lock()
	span, ok := t.spans[e.Session.ID]
	delete(t.spans, e.Session.ID)
	t.mu.Unlock()
	if !ok {
		return
	}
	span.SetAttributes(
		attribute.String("dashgrid.outcome", string(e.Outcome)),
		attribute.String("dashgrid.target_zone.id", e.Session.HoveredZone),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(oteltrace.WithTimestamp(e.Timestamp))
}

func (t *Tracer) span(sessionID string) (oteltrace.Span, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.spans[sessionID]
	return s, ok
}

// NewOTLPProvider builds a batching tracer provider exporting over OTLP/HTTP.
// An empty endpoint returns nil (tracing disabled).
func NewOTLPProvider(ctx context.Context, endpoint, serviceName string) (*sdktrace.TracerProvider, error) {
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	if serviceName == "" {
		serviceName = "dashgrid"
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
