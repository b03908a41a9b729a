package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

func newTestApp(t *testing.T, out io.Writer) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc", Version: "1.0.0"}}
	log := logger.NewWithWriter(io.Discard, &logger.Config{Level: "error", Format: "json"}, "test-svc")
	app, err := NewApp(cfg, WithLogger(log), WithSummaryOutput(out))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

type recorder struct {
	events []string
}

func (r *recorder) component(name string, startErr error) Component {
	return NewComponent(name,
		func(context.Context) error {
			r.events = append(r.events, "start:"+name)
			return startErr
		},
		func(context.Context) error {
			r.events = append(r.events, "stop:"+name)
			return nil
		})
}

func (r *recorder) hook(name string) Hook {
	return func(context.Context) error {
		r.events = append(r.events, name)
		return nil
	}
}

type healthComponent struct {
	Component
	status observability.HealthStatus
}

func (h healthComponent) CheckHealth(context.Context) observability.Health {
	return observability.Health{Name: h.Name(), Status: h.status, Message: "db unreachable"}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &testConfig{}
	if _, err := NewApp(cfg, WithLogger(logger.NewWithWriter(io.Discard, &logger.Config{}, ""))); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestNewApp_AppliesDefaults(t *testing.T) {
	app := newTestApp(t, io.Discard)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("got name=%q version=%q", app.Name, app.Version)
	}
	if app.ServiceConfig().Environment != "development" {
		t.Errorf("expected default environment, got %q", app.ServiceConfig().Environment)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t, io.Discard)
	rec := &recorder{}
	app.Register(rec.component("db", nil), rec.component("http", nil))
	app.OnStart(rec.hook("onStart"))
	app.OnReady(rec.hook("onReady"))
	app.OnStop(rec.hook("onStop"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		rec.events = append(rec.events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{"start:db", "start:http", "onStart", "onReady", "task", "onStop", "stop:http", "stop:db"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events\n got: %v\nwant: %v", rec.events, want)
	}
}

func TestRunTask_ReturnsTaskError(t *testing.T) {
	app := newTestApp(t, io.Discard)
	boom := errors.New("boom")
	err := app.RunTask(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRun_StartFailureStopsStartedComponents(t *testing.T) {
	app := newTestApp(t, io.Discard)
	rec := &recorder{}
	app.Register(rec.component("db", nil), rec.component("http", errors.New("port in use")), rec.component("worker", nil))

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "start http") {
		t.Fatalf("expected start error, got %v", err)
	}

	want := []string{"start:db", "start:http", "stop:db"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events\n got: %v\nwant: %v", rec.events, want)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	app := newTestApp(t, io.Discard)
	rec := &recorder{}
	app.Register(rec.component("db", nil))
	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rec.events[len(rec.events)-1]; got != "stop:db" {
		t.Errorf("expected db stopped last, got %q", got)
	}
}

func TestShutdown_JoinsErrors(t *testing.T) {
	app := newTestApp(t, io.Discard)
	app.Register(NewComponent("cache", nil, func(context.Context) error { return errors.New("flush failed") }))
	app.OnStop(func(context.Context) error { return errors.New("drain failed") })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected shutdown error")
	}
	for _, want := range []string{"drain failed", "stop cache: flush failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name   string
		status observability.HealthStatus
		want   observability.HealthStatus
	}{
		{"healthy", observability.HealthStatusUp, observability.HealthStatusUp},
		{"degraded", observability.HealthStatusDegraded, observability.HealthStatusDegraded},
		{"down", observability.HealthStatusDown, observability.HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, io.Discard)
			app.Register(NewComponent("plain", nil, nil))
			app.Register(healthComponent{Component: NewComponent("db", nil, nil), status: tt.status})

			h := app.ReadyCheck(context.Background())
			if h.Status != tt.want {
				t.Errorf("status = %s, want %s", h.Status, tt.want)
			}
			if len(h.Components) != 1 {
				t.Errorf("expected only health-reporting components, got %d", len(h.Components))
			}
		})
	}
}

func TestSummary_Display(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, &buf)
	app.Summary.TrackRoute("GET", "/api/v1/articles")
	app.Register(
		NewComponent("http", nil, nil),
		healthComponent{Component: NewComponent("db", nil, nil), status: observability.HealthStatusDown},
	)

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"test-svc 1.0.0", "✓ http", "✗ db (db unreachable)", "GET    /api/v1/articles", "Health: down"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
