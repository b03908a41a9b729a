// Package config loads service configuration with Viper.
//
// LoadConfig resolves a config.yml and an optional .env file, binds
// environment variables onto nested keys and unmarshals into any struct that
// embeds ServiceConfig. The debug flag can be changed at runtime through a
// DebugSwitch kept in sync by WatchDebug.
//
// # Usage
//
//	var cfg APIConfig
//	v, err := config.Load("articles-api", &cfg, config.WithEnvPrefix("ARTICLES"))
//	debug := config.NewDebugSwitch(cfg.Debug)
//	config.WatchDebug(v, debug, log)
package config
