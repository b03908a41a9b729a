package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.firstExisting(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.firstExisting(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists config.yml locations in search order.
func configCandidates(serviceName string) []string {
	var paths []string
	for _, base := range []string{".", "..", "../.."} {
		paths = append(paths, filepath.Join(base, "cmd", serviceName, "config.yml"))
	}
	return append(paths,
		filepath.Join(".", "config", "config.yml"),
		filepath.Join(".", "config.yml"),
	)
}

// envCandidates lists .env locations in search order. A service-specific
// .env.<service> wins over a shared .env.
func envCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range []string{
			filepath.Join("cmd", serviceName),
			filepath.Join("..", "cmd", serviceName),
			"config",
			".",
			"..",
		} {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// EnvPrefix restricts environment binding to variables starting with
	// PREFIX_. Empty binds every variable.
	EnvPrefix string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix binds only environment variables carrying the given prefix,
// e.g. "ARTICLES" maps ARTICLES_LOGGING_LEVEL to logging.level.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// It searches for config.yml and .env files in standard locations, binds
// environment variables, and unmarshals the result into cfg. When cfg
// implements Config, defaults are applied and the result is validated.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	_, err := Load(serviceName, cfg, opts...)
	return err
}

// Load is LoadConfig that also returns the viper instance, so callers can
// watch the resolved file for changes.
func Load(serviceName string, cfg interface{}, opts ...LoaderOption) (*viper.Viper, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v, err := newViper(files, lc)
	if err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	if c, ok := cfg.(Config); ok {
		base := c.GetServiceConfig()
		if base.Name == "" {
			base.Name = serviceName
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	return v, nil
}

func newViper(files ResolvedFiles, lc LoaderConfig) (*viper.Viper, error) {
	v := viper.New()

	// .env first so that its variables take part in env binding below.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	bindEnvVars(v, lc.EnvPrefix)
	return v, nil
}

// bindEnvVars binds environment variables to every nested key shape they
// could address. Existing config keys are preferred: if the config file has
// auth.jwt_secret, AUTH_JWT_SECRET binds to that key.
func bindEnvVars(v *viper.Viper, prefix string) {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(key, prefix+"_") {
				continue
			}
			key = strings.TrimPrefix(key, prefix+"_")
		}

		variants := generateEnvKeyVariants(key)
		bound := false
		for _, variant := range variants {
			if known[variant] {
				v.Set(variant, value)
				bound = true
			}
		}
		if !bound {
			for _, variant := range variants {
				v.SetDefault(variant, value)
			}
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	AUTH_JWT_SECRET -> [auth_jwt_secret, auth.jwt.secret, auth.jwt_secret, auth_jwt.secret]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"),
			strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."),
		)
	}

	return removeDuplicates(variants)
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
