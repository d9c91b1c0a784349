package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Ampliflow/internal/discovery"
	"github.com/shaiso/Ampliflow/internal/domain"
)

// NewRunCmd создаёт команду разового запуска пайплайна.
func NewRunCmd(logger *slog.Logger) *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover samples and run the pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			samples, err := discovery.Scan(cfg.InputDir)
			if err != nil {
				return fmt.Errorf("discover samples: %w", err)
			}

			rt := newRuntime(ctx, cfg, logger)
			defer rt.close()

			rep, run, err := rt.execute(ctx, samples)
			if err != nil {
				return err
			}

			if rep.ExitCode() != 0 {
				return fmt.Errorf("%d of %d samples did not complete", rep.Failed(), len(rep.Samples))
			}
			if run.Status == domain.RunStatusFailed {
				// Падение на уровне запуска при успешных образцах
				// (whole-run стадия).
				return fmt.Errorf("run failed: %s", run.Error)
			}
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
