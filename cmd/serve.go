package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/beefewer/internal/reminder"
	"github.com/teemow/beefewer/internal/server"
	"github.com/teemow/beefewer/internal/tools/google_tools"
	"github.com/teemow/beefewer/internal/tools/reminder_tools"
)

func newServeCmd() *cobra.Command {
	var yolo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio, exposing the
reminder reconciler as tools for AI assistants.

Safety Mode:
  By default, the server operates in read-only mode: reminders can be listed
  but not archived. Use --yolo to enable beeminder_archive_stale_reminders.

Credentials:
  Google tokens are shared with the cleanup command. Accounts without a
  token can be authorized with the google_get_auth_url and
  google_save_auth_code tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), yolo)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (archiving). Default is read-only mode.")
	return cmd
}

func runServe(ctx context.Context, yolo bool) error {
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the protocol
	logger := newLogger(os.Stderr, debugMode)

	t, err := newTelemetry(shutdownCtx, logger)
	if err != nil {
		return err
	}
	defer t.Shutdown(context.Background(), logger)

	serverContext, err := server.NewServerContext(shutdownCtx, func(ctx context.Context, account string) (*reminder.Reconciler, error) {
		return newReconciler(ctx, account, t, logger)
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	if t.provider.Enabled() {
		serverContext.SetMetrics(t.Metrics())
		serverContext.SetAuditLogger(t.audit)
	}

	mcpSrv := newMCPServer()

	// readOnly is the inverse of yolo
	readOnly := !yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable archiving)")
	} else {
		logger.Info("starting server with write operations enabled (--yolo flag is set)")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	return runStdioServer(mcpSrv)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("beefewer", version,
		mcpserver.WithToolCapabilities(true),
	)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Beeminder reminder tools",
			register: func() error {
				return reminder_tools.RegisterReminderTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Google tools",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		slog.Debug("registering tools", "group", reg.name)
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
