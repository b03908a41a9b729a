package main

import (
	"testing"

	"github.com/kbukum/errkit/auth/jwt"
	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/database"
)

func TestConfig_LoadsShippedFile(t *testing.T) {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, config.WithConfigFile("config.yml"), config.WithEnvPrefix("ARTICLES_TEST")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != serviceName || cfg.Server.Port != 8080 || cfg.Database.Path != "articles.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.JWT.AccessTokenTTL.Minutes() != 15 {
		t.Errorf("access ttl = %s", cfg.JWT.AccessTokenTTL)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Email != demoUser.Email {
		t.Errorf("expected demo user seeded in development, got %+v", cfg.Users)
	}
	if got := cfg.Roles["editor"]; len(got) != 1 || got[0] != "article:moderate" {
		t.Errorf("editor role = %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"short jwt secret", Config{JWT: jwtWithSecret("short")}, true},
		{"bad database", Config{JWT: jwtWithSecret("a-long-enough-secret"), Database: database.Config{Path: "x.db", BusyTimeout: "never"}}, true},
		{"ok", Config{JWT: jwtWithSecret("a-long-enough-secret")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Name = serviceName
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_NoDemoUserInProduction(t *testing.T) {
	cfg := Config{}
	cfg.Name = serviceName
	cfg.Environment = "production"
	cfg.ApplyDefaults()
	if len(cfg.Users) != 0 {
		t.Errorf("production must not seed users, got %+v", cfg.Users)
	}
}

func jwtWithSecret(secret string) jwt.Config {
	return jwt.Config{Secret: secret}
}
