package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/beefewer/internal/logging"
	"github.com/teemow/beefewer/internal/reminder"
)

// runner runs one reconciliation. It is replaced in tests.
type runner interface {
	Run(ctx context.Context, dryRun bool) (*reminder.Result, error)
}

func newCleanupCmd() *cobra.Command {
	var (
		account string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Archive Beeminder reminder emails whose goal already has data",
		Long: `Scan your Gmail inbox for Beeminder reminder emails. If the goal a reminder
is about already has a datapoint for the reminded day, the thread is archived.

Accelerating ("Eep!") reminders are assumed to be about today. Run cleanup
between the goal's data deadline and midnight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := logging.WithOperation(newLogger(cmd.ErrOrStderr(), debugMode), "cleanup")

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

			return runCleanup(ctx, r, dryRun, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be archived without archiving")
	return cmd
}

// runCleanup runs r once and prints the summary line. A failed archive
// batch is returned after the summary.
func runCleanup(ctx context.Context, r runner, dryRun bool, out io.Writer, logger *slog.Logger) error {
	res, err := r.Run(ctx, dryRun)
	if res == nil {
		return err
	}

	logger.Debug("run finished",
		logging.RunID(res.RunID),
		"scanned", res.Scanned,
		"matched", res.Matched,
		"skipped", res.Skipped,
		"failed", res.Failed)

	fmt.Fprintln(out, res.Summary())
	return err
}
