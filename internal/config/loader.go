package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file
// into a Config. Precedence: flags > config file > environment > defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		BaseURL:       DefaultBaseURL,
		Workers:       DefaultWorkers,
		TotalRequests: DefaultTotalRequests,
		Timeout:       DefaultTimeout,
		LogLevel:      DefaultLogLevel,
		LogDir:        DefaultLogDir,
		OutputDir:     DefaultOutputDir,
		Audit:         true,
		ConfigFile:    configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	// Environment fallback keeps the credential out of shell history and
	// config files checked into source control.
	if cfg.Token == "" {
		if envToken := os.Getenv("REPSTRESS_AUTH_TOKEN"); envToken != "" {
			cfg.Token = envToken
		}
	}
	if cfg.Token == "" {
		cfg.Token = DefaultToken
	}

	cfg.TargetsFile = strings.TrimSpace(cfg.TargetsFile)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "targets", "targets_file", "targets-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("targets: %w", err)
		}
		cfg.TargetsFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "baseurl", "base_url", "base-url"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("baseUrl: %w", err)
		}
		cfg.BaseURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "token"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		cfg.Token = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "workers", "threads"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("workers: %w", err)
		}
		cfg.Workers = val
	}

	if raw, ok := lookupSetting(settings, "total", "total_requests", "total-requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("total: %w", err)
		}
		cfg.TotalRequests = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "deadline"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("deadline: %w", err)
		}
		cfg.Deadline = dur
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "logdir", "log_dir", "log-dir"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logDir: %w", err)
		}
		cfg.LogDir = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "outputdir", "output_dir", "output-dir"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("outputDir: %w", err)
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "audit"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		cfg.Audit = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	if value == nil {
		return TracingConfig{}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}

	var tracing TracingConfig
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	return tracing, nil
}
