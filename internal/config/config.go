package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults preserved from earlier releases; deadline intentionally defaults
// to the per-call timeout (see EffectiveDeadline).
const (
	DefaultBaseURL = "https://microcks.gin.dev.securingsam.io"
	DefaultToken   = "I_am_under_stress_when_I_test"

	DefaultWorkers       = 10
	DefaultTotalRequests = 100
	DefaultTimeout       = 60 * time.Second

	DefaultOutputDir = "results"
	DefaultLogDir    = "logs"
	DefaultLogLevel  = "info"
)

// Config is the immutable run configuration. It is assembled once by the
// Loader and never mutated by the engine.
type Config struct {
	TargetsFile   string        `mapstructure:"targets"`
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	Workers       int           `mapstructure:"workers"`
	TotalRequests int           `mapstructure:"total"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Deadline      time.Duration `mapstructure:"deadline"`
	LogLevel      string        `mapstructure:"log_level"`
	LogDir        string        `mapstructure:"log_dir"`
	OutputDir     string        `mapstructure:"output_dir"`
	Audit         bool          `mapstructure:"audit"`
	JSONOutput    bool          `mapstructure:"json_output"`
	Thresholds    []string      `mapstructure:"thresholds"`
	ConfigFile    string        `mapstructure:"-"`
	Tracing       TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures the optional OTLP span exporter.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Protocol    string `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// EffectiveDeadline returns the global wait bound for joining workers.
// When no explicit deadline is configured it falls back to the per-call
// timeout, preserving the numeric coupling older runs relied on while
// keeping the two concerns separately configurable.
func (c Config) EffectiveDeadline() time.Duration {
	if c.Deadline > 0 {
		return c.Deadline
	}
	return c.Timeout
}

// ValidationError aggregates all configuration issues found in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// "warn" is accepted as an alias so anything logging.ParseLevel takes also
// passes validation.
var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"warn":    true,
	"error":   true,
}

// Validate fails fast before any artifact is created or any network
// activity begins.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetsFile) == "" {
		issues = append(issues, "targets file is required (use --help for usage information)")
	}
	if c.Workers < 1 {
		issues = append(issues, "workers must be >= 1")
	}
	if c.TotalRequests < 1 {
		issues = append(issues, "total must be >= 1")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Deadline < 0 {
		issues = append(issues, "deadline must be >= 0")
	}
	if !validLogLevels[strings.ToLower(strings.TrimSpace(c.LogLevel))] {
		issues = append(issues, fmt.Sprintf("log level %q is not one of debug, info, warning, error", c.LogLevel))
	}

	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		issues = append(issues, "base URL is required")
	} else if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("base URL %q is not an absolute URL", c.BaseURL))
	}

	if proto := strings.ToLower(strings.TrimSpace(c.Tracing.Protocol)); proto != "" && proto != "grpc" && proto != "http" {
		issues = append(issues, fmt.Sprintf("tracing protocol must be 'grpc' or 'http', got %q", c.Tracing.Protocol))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
