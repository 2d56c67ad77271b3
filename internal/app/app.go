package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/yungbote/bookgraph/internal/config"
	"github.com/yungbote/bookgraph/internal/observability"
	"github.com/yungbote/bookgraph/internal/platform/artifact"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

// App owns the process-wide dependencies shared by every binary.
type App struct {
	Log       *logger.Logger
	Cfg       *config.Config
	Metrics   *observability.Metrics
	Artifacts *artifact.Store

	serviceName    string
	shutdownTracer func(context.Context) error
	closers        []func(context.Context) error
}

func New(ctx context.Context, serviceName string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return newApp(ctx, serviceName, cfg, log), nil
}

func newApp(ctx context.Context, serviceName string, cfg *config.Config, log *logger.Logger) *App {
	a := &App{
		Log:         log,
		Cfg:         cfg,
		Metrics:     observability.NewMetrics(),
		Artifacts:   artifact.NewStore(log),
		serviceName: serviceName,
	}
	a.shutdownTracer = observability.InitTracing(ctx, log, observability.TracingConfigFromEnv(serviceName))
	a.onClose(func(context.Context) error { return a.Artifacts.Close() })
	return a
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse acquisition order, then flushes traces and logs.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Log.Warn("Close failed", "error", err)
		}
	}
	a.closers = nil
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		a.shutdownTracer = nil
	}
	a.Log.Sync()
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
