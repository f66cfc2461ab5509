package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/report"
)

func main() {
	// A missing .env file is fine, the environment may already be complete.
	_ = godotenv.Load()

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes the benchmark described by cfg, logs to logOut and writes the report to out.
func run(ctx context.Context, cfg Config, out, logOut io.Writer) (err error) {
	level, err := cfg.logLevel()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	logger.Info("starting benchmark", "backend", cfg.Backend, "scales", joinInts(cfg.Scales), "runs", cfg.Runs)

	options := []harness.Option{harness.WithLogger(logger)}

	if cfg.ObservabilityEnabled {
		providers, obsErr := newObservabilityProviders(ctx, cfg)
		if obsErr != nil {
			return fmt.Errorf("failed to create observability providers: %w", obsErr)
		}
		defer func() {
			err = errors.Join(err, providers.Shutdown())
		}()

		options = append(options, providers.harnessOptions()...)
		logger.Info("observability enabled",
			"traces", cfg.TraceEndpoint,
			"metrics", cfg.MetricsEndpoint,
			"logs", cfg.LogsEndpoint,
		)
	}

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	h, err := harness.New(backend, cfg.harnessConfig(), options...)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create harness: %w", err), backend.Close())
	}

	summary, runErr := h.Run(ctx)
	if runErr != nil {
		logger.Error("benchmark ended early, reporting partial results", "error", runErr)
	}

	if reportErr := writeReport(out, cfg.Report, summary); reportErr != nil {
		return errors.Join(runErr, fmt.Errorf("failed to write report: %w", reportErr))
	}

	return runErr
}

func writeReport(w io.Writer, format string, summary harness.RunSummary) error {
	switch format {
	case reportJSON:
		return report.WriteJSON(w, summary)
	case reportText:
		return report.WriteText(w, summary)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownReport, format)
	}
}
