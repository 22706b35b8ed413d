package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/beefewer/internal/logging"
	"github.com/teemow/beefewer/internal/server"
)

// DefaultWatchInterval is the default time between two runs.
const DefaultWatchInterval = time.Hour

func newWatchCmd() *cobra.Command {
	var (
		account     string
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run cleanup periodically",
		Long: `Run the cleanup every --interval until interrupted. After each run the
number of archived emails and the completion time are printed.

With --metrics-addr, Prometheus metrics and health endpoints are served on
that address (requires METRICS_EXPORTER=prometheus, the default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := newLogger(cmd.ErrOrStderr(), debugMode)

			if err := newAuthorizer().ensureToken(ctx, account); err != nil {
				return err
			}

			t, err := newTelemetry(ctx, logger)
			if err != nil {
				return err
			}
			defer t.Shutdown(context.Background(), logger)

			r, err := newReconciler(ctx, account, t, logger)
			if err != nil {
				return err
			}

			health := server.NewHealthChecker()
			if metricsAddr != "" {
				stop, err := startMetricsServer(ctx, metricsAddr, t, health, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			return watch(ctx, r, interval, health, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "Time between two runs")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", getEnvOrDefault("METRICS_ADDR", ""), "Serve metrics and health endpoints on this address (e.g. :9090). Can also use METRICS_ADDR env var.")
	return cmd
}

// watch runs r immediately and then every interval until ctx is done.
// Failed runs are logged and retried at the next tick. health reports not
// ready until the first run has finished, and shutting down as soon as ctx
// is canceled, even while a run is still draining.
func watch(ctx context.Context, r runner, interval time.Duration, health *server.HealthChecker, out io.Writer, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	health.SetReady(false)
	stop := context.AfterFunc(ctx, health.SetShuttingDown)
	defer stop()
	defer health.SetShuttingDown()

	for {
		res, err := r.Run(ctx, false)
		health.RecordRun(res, err)
		health.SetReady(true)

		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			logger.Error("run failed", logging.Err(err))
		}
		if res != nil {
			fmt.Fprintf(out, "Archived %d email(s) at %s\n", res.Archived, res.FinishedAt.Format(time.RFC3339))
		}

		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// startMetricsServer serves metrics and health endpoints on addr until the
// returned stop function is called.
func startMetricsServer(ctx context.Context, addr string, t *telemetry, health *server.HealthChecker, logger *slog.Logger) (func(), error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: t.provider,
		HealthChecker:           health,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during metrics server shutdown", logging.Err(err))
		}
	}, nil
}
