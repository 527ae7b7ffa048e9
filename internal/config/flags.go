package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "repstress",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target selection flags
	flags.String("targets", "", "Path to YAML file with the target domain list (required)")
	flags.String("base-url", DefaultBaseURL, "Base URL of the reputation API")
	flags.String("token", "", "Static authorization token (falls back to REPSTRESS_AUTH_TOKEN, then the built-in default)")

	// Load control flags
	flags.IntP("workers", "w", DefaultWorkers, "Number of concurrent workers")
	flags.IntP("total", "n", DefaultTotalRequests, "Total number of random requests to make")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.Duration("deadline", 0, "Global run deadline measured from worker start (0 means reuse --timeout)")

	// Output flags
	flags.String("output-dir", DefaultOutputDir, "Directory for the CSV report")
	flags.String("log-dir", DefaultLogDir, "Directory for run logs")
	flags.String("log-level", DefaultLogLevel, "Log verbosity: debug, info, warning or error")
	flags.Bool("audit", true, "Write one audit row per request to the report file")
	flags.Bool("json-output", false, "Also emit the summary as JSON on stdout")
	flags.StringArray("threshold", nil, "Pass/fail assertion over the final stats, repeatable (e.g. 'latency:p90 < 0.5', 'errors:rate < 5')")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP endpoint for span export (empty disables tracing)")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Skip TLS for the OTLP exporter")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("targets") {
		val, err := fs.GetString("targets")
		if err != nil {
			return err
		}
		cfg.TargetsFile = strings.TrimSpace(val)
	}
	if fs.Changed("base-url") {
		val, err := fs.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(val)
	}
	if fs.Changed("token") {
		val, err := fs.GetString("token")
		if err != nil {
			return err
		}
		cfg.Token = strings.TrimSpace(val)
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("total") {
		val, err := fs.GetInt("total")
		if err != nil {
			return err
		}
		cfg.TotalRequests = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("deadline") {
		val, err := fs.GetDuration("deadline")
		if err != nil {
			return err
		}
		cfg.Deadline = val
	}
	if fs.Changed("output-dir") {
		val, err := fs.GetString("output-dir")
		if err != nil {
			return err
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}
	if fs.Changed("log-dir") {
		val, err := fs.GetString("log-dir")
		if err != nil {
			return err
		}
		cfg.LogDir = strings.TrimSpace(val)
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("audit") {
		val, err := fs.GetBool("audit")
		if err != nil {
			return err
		}
		cfg.Audit = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringArray("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}

	return nil
}
