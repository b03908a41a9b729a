package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	Level     string     `yaml:"level" mapstructure:"level"`
	Format    string     `yaml:"format" mapstructure:"format"`
	Output    string     `yaml:"output" mapstructure:"output"` // stdout, stderr or file
	NoColor   bool       `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool       `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool       `yaml:"caller" mapstructure:"caller"`
	File      FileConfig `yaml:"file" mapstructure:"file"`
}

// FileConfig configures rotated log files, used when Output is "file".
// Files are named <dir>/<name>.YYYYMMDD.log with a <name>.log symlink to the
// current one.
type FileConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	Name          string `yaml:"name" mapstructure:"name"`
	MaxAgeDays    int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	RotationHours int    `yaml:"rotation_hours" mapstructure:"rotation_hours"`
	// AlsoStdout mirrors file output to stdout.
	AlsoStdout bool `yaml:"also_stdout" mapstructure:"also_stdout"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.File.Dir == "" {
		c.File.Dir = "./logs"
	}
	if c.File.MaxAgeDays <= 0 {
		c.File.MaxAgeDays = 7
	}
	if c.File.RotationHours <= 0 {
		c.File.RotationHours = 24
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "trace"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", "text", FormatPretty}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	validOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validOutputs, c.Output) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", validOutputs, c.Output)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
