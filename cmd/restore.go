package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/beefewer/internal/gmail"
	"github.com/teemow/beefewer/internal/logging"
)

// unarchiver moves threads back to the inbox. It is replaced in tests.
type unarchiver interface {
	UnarchiveThreads(ctx context.Context, tids []string) error
}

func newRestoreCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "restore THREAD_ID...",
		Short: "Move archived reminder threads back to the inbox",
		Long: `Undo an archive by adding the INBOX label back to the given threads.
Thread IDs are printed by "cleanup --debug" and listed by the
beeminder_list_reminders MCP tool.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.WithOperation(newLogger(cmd.ErrOrStderr(), debugMode), "restore")

			if err := newAuthorizer().ensureToken(ctx, account); err != nil {
				return err
			}

			client, err := gmail.NewClientForAccount(ctx, account)
			if err != nil {
				return err
			}

			return runRestore(ctx, client, args, cmd.OutOrStdout(), logging.WithAccount(logger, client.Account()))
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	return cmd
}

func runRestore(ctx context.Context, u unarchiver, tids []string, out io.Writer, logger *slog.Logger) error {
	for _, tid := range tids {
		logger.Debug("Restoring thread", logging.Thread(tid))
	}
	if err := u.UnarchiveThreads(ctx, tids); err != nil {
		return fmt.Errorf("failed to restore threads: %w", err)
	}
	fmt.Fprintf(out, "Restored %d thread(s).\n", len(tids))
	return nil
}
