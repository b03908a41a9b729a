package main

import (
	"fmt"

	"github.com/kbukum/errkit/auth/jwt"
	"github.com/kbukum/errkit/auth/password"
	"github.com/kbukum/errkit/config"
	"github.com/kbukum/errkit/database"
	"github.com/kbukum/errkit/internal/account"
	"github.com/kbukum/errkit/observability"
	"github.com/kbukum/errkit/server"
)

const serviceName = "articles-api"

// Config is the articles-api configuration, loaded from config.yml, .env and
// ARTICLES_* environment variables.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	JWT           jwt.Config           `yaml:"jwt" mapstructure:"jwt"`
	Password      password.Config      `yaml:"password" mapstructure:"password"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Users         []account.UserConfig `yaml:"users" mapstructure:"users"`
	// Roles maps a role to permission patterns such as "article:*".
	Roles map[string][]string `yaml:"roles" mapstructure:"roles"`
}

// demoUser is seeded outside production when no users are configured.
var demoUser = account.UserConfig{
	ID:       "demo",
	Name:     "Demo User",
	Email:    "demo@example.com",
	Password: "demo-password",
}

func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Roles == nil {
		c.Roles = map[string][]string{"admin": {"*:*"}}
	}
	if len(c.Users) == 0 && !c.IsProduction() {
		c.Users = []account.UserConfig{demoUser}
	}
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	return nil
}
