// Package bootstrap runs an errkit service through a uniform lifecycle:
// start components, run hooks, report readiness, wait for a signal, and shut
// everything down in reverse order.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Register(repo)
//	app.Register(srv)
//	app.OnReady(func(ctx context.Context) error { ... })
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
