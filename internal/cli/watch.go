package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/watch"
)

// NewWatchCmd создаёт команду наблюдения за входным каталогом.
func NewWatchCmd(logger *slog.Logger) *cobra.Command {
	var flags profileFlags
	var cronExpr string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and run the pipeline for new samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			rt := newRuntime(ctx, cfg, logger)
			defer rt.close()

			launch := func(ctx context.Context, samples []domain.Sample) error {
				rep, run, err := rt.execute(ctx, samples)
				if err != nil {
					return err
				}
				if rep.ExitCode() != 0 || run.Status == domain.RunStatusFailed {
					logger.Warn("run completed with failures",
						"succeeded", rep.Succeeded(),
						"failed", rep.Failed(),
						"run_status", run.Status,
					)
				}
				return nil
			}

			watcher, err := watch.New(cfg.InputDir, cronExpr, launch, logger)
			if err != nil {
				return err
			}

			// HTTP mux: /healthz + /metrics
			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			mux.Handle("/metrics", promhttp.Handler())

			go func() {
				logger.Info("listening", "addr", metricsAddr)
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					logger.Error("http server error", "error", err)
					cancel()
				}
			}()

			logger.Info("watching input directory",
				"dir", cfg.InputDir,
				"schedule", cronExpr,
			)

			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watcher stopped: %w", err)
			}

			logger.Info("watcher stopped")
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&cronExpr, "cron", "*/5 * * * *", "Rescan schedule (cron expression)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Address for /metrics and /healthz")

	return cmd
}
