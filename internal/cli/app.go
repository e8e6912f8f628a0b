// Package cli assembles the dashgrid application from its configuration:
// logger, snapshot store, engine, autosave and observability.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/internal/config"
	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/observability"
	"github.com/aretw0/dashgrid/pkg/persistence/middleware"
	"github.com/aretw0/dashgrid/pkg/registry"
	"github.com/aretw0/dashgrid/pkg/snapshot"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options tweaks how an App is built.
type Options struct {
	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
	// Debug forces debug logging and logs every drag transition.
	Debug bool
	// Fresh ignores the persisted layout and starts from the configured zones.
	Fresh bool
}

// App is a fully wired dashgrid instance.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Engine    *dashgrid.Engine
	Snapshots *snapshot.Manager
	Metrics   *observability.Metrics

	// Restored reports whether the layout came from the snapshot store.
	Restored bool

	store     *openedStore
	tracer    *sdktrace.TracerProvider
	autosaver *snapshot.Autosaver
	autosub   dashgrid.Subscription
	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New builds an App from cfg. Background work started here stops on Close.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger, err := newLogger(cfg.Log, opts)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, store: store, Metrics: observability.NewMetrics()}

	snapshots := middleware.Chain(store.store,
		middleware.NewMetricsMiddleware(app.Metrics.Registry()),
		middleware.NewValidationMiddleware(),
	)
	mgrOpts := []snapshot.Option{snapshot.WithLogger(logger)}
	if store.locker != nil {
		mgrOpts = append(mgrOpts, snapshot.WithLocker(store.locker))
	}
	app.Snapshots = snapshot.NewManager(snapshots, mgrOpts...)

	hooks := []domain.LifecycleHooks{app.Metrics.Hooks()}
	if opts.Debug {
		hooks = append(hooks, debugHooks(logger))
	}
	tp, err := observability.NewOTLPProvider(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		_ = store.close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if tp != nil {
		app.tracer = tp
		hooks = append(hooks, observability.NewTracer(tp).Hooks())
	}

	engine, err := newEngine(cfg, logger, hooks)
	if err != nil {
		_ = app.shutdownTracer(ctx)
		_ = store.close()
		return nil, err
	}
	app.Engine = engine

	if err := app.restore(ctx, opts.Fresh); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	app.Metrics.ObserveLayout(engine.Layout())

	if cfg.Store.Autosave {
		app.startAutosave()
	}
	return app, nil
}

func newLogger(cfg config.LogConfig, opts Options) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return logging.NewWithWriter(out, level, cfg.JSON), nil
}

func newEngine(cfg *config.Config, logger *slog.Logger, hooks []domain.LifecycleHooks) (*dashgrid.Engine, error) {
	policy, err := cfg.Activation.Policy()
	if err != nil {
		return nil, err
	}

	engineOpts := []dashgrid.Option{
		dashgrid.WithLogger(logger),
		dashgrid.WithActivation(policy),
		dashgrid.WithPressTolerance(cfg.Activation.Tolerance),
		dashgrid.WithName(cfg.Store.LayoutID),
	}
	if len(cfg.Components) > 0 {
		engineOpts = append(engineOpts, dashgrid.WithRegistry(registry.NewRegistry(cfg.Components...)))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, dashgrid.WithLifecycleHooks(h))
	}

	engine, err := dashgrid.New(cfg.Zones, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// restore loads the persisted layout, or seeds the store with the configured one.
// A persisted layout the engine rejects is logged and replaced by the configured one.
func (a *App) restore(ctx context.Context, fresh bool) error {
	id := a.Config.Store.LayoutID
	initial := a.Engine.Layout()
	if fresh {
		return a.Snapshots.Save(ctx, id, initial)
	}

	snap, found, err := a.Snapshots.LoadOrInit(ctx, id, initial)
	if errors.Is(err, domain.ErrInvalidSnapshot) {
		a.Logger.Warn("persisted layout rejected, using configuration", "layout_id", id, "err", err)
		return a.Snapshots.Save(ctx, id, initial)
	}
	if err != nil {
		return fmt.Errorf("load layout %q: %w", id, err)
	}
	if !found {
		a.Logger.Info("layout initialized", "layout_id", id, "zones", len(initial.Order))
		return nil
	}
	if err := a.Engine.RestoreLayout(snap); err != nil {
		a.Logger.Warn("persisted layout rejected, using configuration", "layout_id", id, "err", err)
		return a.Snapshots.Save(ctx, id, initial)
	}
	a.Restored = true
	a.Logger.Info("layout restored", "layout_id", id, "zones", len(snap.Order), "components", snap.ComponentCount())
	return nil
}

func (a *App) startAutosave() {
	a.autosaver = snapshot.NewAutosaver(a.Snapshots, a.Config.Store.LayoutID)
	a.autosub = a.Engine.OnLayoutChanged(a.autosaver.Listener)

	runCtx, stop := context.WithCancel(context.Background())
	a.stop = stop
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.autosaver.Run(runCtx)
	}()
}

// Save persists the current layout immediately.
func (a *App) Save(ctx context.Context) error {
	return a.Snapshots.Save(ctx, a.Config.Store.LayoutID, a.Engine.Layout())
}

// Close stops autosave after a final flush, then releases the engine, the
// tracer provider and the store. It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.autosub != nil {
			a.autosub.Remove()
		}
		if a.stop != nil {
			a.stop()
			<-a.done
		}
		if a.Engine != nil {
			errs = append(errs, a.Engine.Close())
		}
		errs = append(errs, a.shutdownTracer(ctx))
		errs = append(errs, a.store.close())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

func (a *App) shutdownTracer(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return a.tracer.Shutdown(ctx)
}

// debugHooks logs every drag transition.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPressStart: func(e *domain.DragEvent) {
			logger.Debug("Press Start", "session_id", e.Session.ID, "component_id", e.Session.ComponentID)
		},
		OnDragStart: func(e *domain.DragEvent) {
			logger.Debug("Drag Start", "session_id", e.Session.ID, "component_id", e.Session.ComponentID)
		},
		OnHoverChange: func(e *domain.DragEvent) {
			logger.Debug("Hover Change", "session_id", e.Session.ID, "zone_id", e.Session.HoveredZone, "hovering", e.Session.Hovering)
		},
		OnDragEnd: func(e *domain.DragEvent) {
			if e.Err != nil {
				logger.Debug("Drag End (Error)", "session_id", e.Session.ID, "outcome", e.Outcome, "err", e.Err)
			} else {
				logger.Debug("Drag End", "session_id", e.Session.ID, "outcome", e.Outcome)
			}
		},
		OnLayoutChanged: func(e *domain.LayoutEvent) {
			logger.Debug("Layout Changed", "op", e.Op, "zone_id", e.ZoneID, "component_id", e.Component)
		},
	}
}
