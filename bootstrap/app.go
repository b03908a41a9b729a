package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

// App is a service with a typed configuration and ordered components.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	Summary *Summary

	gracefulTimeout time.Duration
	components      []Component
	started         []Component

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and initializes logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(base.Logging)
		log = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(log)
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          log,
		Summary:         NewSummary(base, o.summaryOut),
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// Register adds components. They start in registration order and stop in
// reverse.
func (a *App[C]) Register(components ...Component) {
	a.components = append(a.components, components...)
}

// ServiceConfig returns the embedded base configuration.
func (a *App[C]) ServiceConfig() *config.ServiceConfig {
	return a.Cfg.GetServiceConfig()
}

// Run starts the application, blocks until a signal or ctx cancellation,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts the application, runs task, and shuts down when it
// returns. SIGINT/SIGTERM cancel the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// ReadyCheck aggregates the health of components that report it.
func (a *App[C]) ReadyCheck(ctx context.Context) *observability.ServiceHealth {
	var checkers []observability.HealthChecker
	for _, c := range a.components {
		if hc, ok := c.(observability.HealthChecker); ok {
			checkers = append(checkers, hc)
		}
	}
	return observability.CheckAll(ctx, a.Name, a.Version, checkers...)
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops hooks and components. Use it when managing the lifecycle
// manually.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	for _, c := range a.components {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		a.started = append(a.started, c)
		a.Logger.Debug("Component started", map[string]interface{}{
			logger.FieldComponent: c.Name(),
		})
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart: %w", err)
	}

	health := a.ReadyCheck(ctx)
	if health.Status != observability.HealthStatusUp {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			logger.FieldStatus: string(health.Status),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady: %w", err)
	}

	a.Summary.Display(time.Since(start), a.started, health)
	return nil
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		errs = append(errs, fmt.Errorf("onStop: %w", err))
	}
	for i := len(a.started) - 1; i >= 0; i-- {
		c := a.started[i]
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
		}
	}
	a.started = nil

	err := errors.Join(errs...)
	if err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return err
	}
	a.Logger.Info("Application shutdown complete")
	return nil
}
