package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/kbukum/errkit/resilience"
	"github.com/kbukum/errkit/security"
)

const defaultTimeout = 30 * time.Second

// DefaultLoginPath is where a 401 redirects when LoginPath is empty.
const DefaultLoginPath = "/login"

// Config configures the API client.
type Config struct {
	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Language selects the catalog for fixed messages ("en", "tr").
	Language string `yaml:"language" mapstructure:"language"`

	// LoginPath is the redirect target after a 401.
	LoginPath string `yaml:"login_path" mapstructure:"login_path"`

	// Retry enables retries of transient failures. Nil disables them.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`

	// TLS configures server verification and client certificates.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("httpclient: invalid base_url %q", c.BaseURL)
		}
	}
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("httpclient: invalid language %q: %w", c.Language, err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
