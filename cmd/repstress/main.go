package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/reputationlabs/repstress/internal/auth"
	"github.com/reputationlabs/repstress/internal/catalog"
	"github.com/reputationlabs/repstress/internal/config"
	"github.com/reputationlabs/repstress/internal/httpclient"
	"github.com/reputationlabs/repstress/internal/logging"
	"github.com/reputationlabs/repstress/internal/metrics"
	"github.com/reputationlabs/repstress/internal/output"
	"github.com/reputationlabs/repstress/internal/runner"
	"github.com/reputationlabs/repstress/internal/threshold"
	"github.com/reputationlabs/repstress/internal/tracing"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	logger, closeLogs, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return err
	}
	defer closeLogs()

	cat, err := catalog.Load(cfg.TargetsFile)
	if err != nil {
		return err
	}
	logger.Info("target catalog loaded",
		zap.String("file", cfg.TargetsFile),
		zap.Int("targets", cat.Len()))

	if err := output.EnsureDir(cfg.OutputDir); err != nil {
		return err
	}
	lock, err := output.AcquireLock(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	runID := output.NewRunID()
	reportPath := output.ReportPath(cfg.OutputDir, runID)
	reportFile, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer reportFile.Close()

	// The header row goes in up front so an aborted run still leaves a
	// self-describing file behind.
	audit, err := output.NewAuditWriter(reportFile)
	if err != nil {
		return err
	}
	var sink runner.AuditSink
	if cfg.Audit {
		sink = audit
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	provider := auth.NewStaticTokenProvider(cfg.Token)
	client := httpclient.NewClient(cfg.Timeout)

	var requester runner.Requester = httpclient.NewReputationRequester(client, cfg.BaseURL, provider)
	if tp.Enabled() {
		requester = tracing.WithSpans(requester, tp.Tracer())
	}

	collector := metrics.NewCollector()
	coord := runner.New(runner.Options{
		Workers:       cfg.Workers,
		TotalRequests: cfg.TotalRequests,
		Deadline:      cfg.EffectiveDeadline(),
		Catalog:       cat,
		Requester:     requester,
		Collector:     collector,
		Audit:         sink,
		Logger:        logger,
	})

	logger.Info("starting run",
		zap.String("run_id", runID),
		zap.Int("workers", cfg.Workers),
		zap.Int("total", cfg.TotalRequests),
		zap.Duration("timeout", cfg.Timeout),
		zap.Duration("deadline", cfg.EffectiveDeadline()))

	result, err := coord.Run(ctx)
	if err != nil {
		return err
	}

	// A run always produces a report, even when cut short: whatever the
	// collector holds at this point is the report. Abandoned workers may
	// still be flushing audit rows, so the summary goes through the audit
	// writer's lock rather than straight to the file.
	stats := collector.Snapshot(cfg.TotalRequests, result.Duration)

	if err := audit.WriteSummary(stats); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := audit.Err(); err != nil {
		logger.Warn("audit trail incomplete", zap.Error(err))
	}

	output.PrintReport(os.Stdout, stats)
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, stats); err != nil {
			return err
		}
	}

	logger.Info("run complete",
		zap.String("report", reportPath),
		zap.Int("popped", result.Popped),
		zap.Int64("completed", stats.Completed),
		zap.Int64("errors", stats.Errors),
		zap.Bool("deadline_exceeded", result.DeadlineExceeded),
		zap.Bool("interrupted", result.Interrupted))

	if results := threshold.NewEvaluator(thresholds).Evaluate(stats); len(results) > 0 {
		fmt.Fprintln(os.Stdout, "\nThresholds:")
		for _, r := range results {
			fmt.Fprintf(os.Stdout, "  %s\n", r.Message)
		}
		if !threshold.AllPassed(results) {
			return errors.New("one or more thresholds not met")
		}
	}

	return nil
}
