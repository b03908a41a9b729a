package database

import (
	"fmt"
	"time"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config holds database connection configuration.
type Config struct {
	// Path is the database file, or MemoryPath.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	// In-memory databases are pinned to a single connection.
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h", "30m").
	ConnMaxLifetime string `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	// BusyTimeout is how long a writer waits on a locked database (e.g. "5s").
	BusyTimeout string `yaml:"busy_timeout" mapstructure:"busy_timeout"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = MemoryPath
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 2
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.BusyTimeout == "" {
		c.BusyTimeout = "5s"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.IsMemory() {
		// Every connection to :memory: is a separate database.
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
		c.ConnMaxLifetime = "0s"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime %q: %w", c.ConnMaxLifetime, err)
	}
	if _, err := time.ParseDuration(c.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy_timeout %q: %w", c.BusyTimeout, err)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	return nil
}

// IsMemory reports whether the database lives in memory.
func (c *Config) IsMemory() bool {
	return c.Path == MemoryPath
}

// dsn builds a modernc.org/sqlite connection string with per-connection pragmas.
func (c *Config) dsn() string {
	busy, _ := time.ParseDuration(c.BusyTimeout)
	pragmas := fmt.Sprintf("_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", busy.Milliseconds())
	if c.IsMemory() {
		return "file::memory:?" + pragmas
	}
	return "file:" + c.Path + "?" + pragmas + "&_pragma=journal_mode(WAL)"
}
