package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kbukum/errkit/auth/jwt"
	"github.com/kbukum/errkit/auth/password"
	"github.com/kbukum/errkit/authz"
	"github.com/kbukum/errkit/bootstrap"
	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/database"
	"github.com/kbukum/errkit/database/migration"
	"github.com/kbukum/errkit/internal/account"
	"github.com/kbukum/errkit/internal/article"
	"github.com/kbukum/errkit/observability"
	"github.com/kbukum/errkit/render"
	"github.com/kbukum/errkit/server"
	"github.com/kbukum/errkit/server/middleware"
	"github.com/kbukum/errkit/version"
)

func run(ctx context.Context, configFile string) error {
	var cfg Config
	opts := []config.LoaderOption{config.WithEnvPrefix("ARTICLES")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	v, err := config.Load(serviceName, &cfg, opts...)
	if err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Version
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	debug := config.NewDebugSwitch(cfg.Debug)
	if !cfg.IsProduction() {
		config.WatchDebug(v, debug, app.Logger)
	}

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.Register(bootstrap.NewComponent("telemetry", nil, shutdownTelemetry))

	db, err := database.Open(ctx, cfg.Database, app.Logger)
	if err != nil {
		return err
	}
	if err := migration.Up(db.SQL, article.Migrations, article.MigrationsPath); err != nil {
		_ = db.Close()
		return err
	}
	app.Register(db)

	srv, err := newServer(app, &cfg, db, debug)
	if err != nil {
		_ = db.Close()
		return err
	}
	app.Register(srv)

	return app.Run(ctx)
}

func newServer(app *bootstrap.App[*Config], cfg *Config, db *database.DB, debug render.DebugFlag) (*server.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	renderMetrics := render.NewMetrics(reg)
	renderer := render.New(
		render.WithDebug(debug),
		render.WithMetrics(renderMetrics),
		render.WithReporter(render.MultiReporter{
			render.NewLogReporter(app.Logger.WithComponent("render")),
			render.TraceReporter{},
			render.NewMetricsReporter(renderMetrics),
		}),
	)

	httpMetrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	srv := server.New(cfg.Server, app.Logger,
		server.WithRenderer(renderer),
		server.WithGatherer(reg),
		server.WithMetrics(httpMetrics),
	)

	repo := article.NewSQLRepository(db)
	srv.ApplyDefaults(cfg.Name, cfg.Version, repo)

	tokens, err := jwt.NewService(&cfg.JWT, jwt.NewUserClaims)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	users, err := account.NewDirectory(cfg.Users, hasher)
	if err != nil {
		return nil, err
	}

	api := srv.GinEngine().Group("/api/v1")
	protected := api.Group("", middleware.Auth(middleware.AuthConfig{
		TokenValidator: tokens.ValidatorFunc(),
		SubjectFunc:    jwt.Subject,
	}))
	account.NewLoginHandler(users, tokens).Register(api)
	articles := article.NewService(repo, app.Logger.WithComponent("article")).
		WithChecker(authz.NewMapChecker(cfg.Roles))
	article.NewHandler(articles).Register(api, protected)

	for _, r := range srv.GinEngine().Routes() {
		app.Summary.TrackRoute(r.Method, r.Path)
	}
	return srv, nil
}
