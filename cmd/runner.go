package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/teemow/beefewer/internal/beeminder"
	"github.com/teemow/beefewer/internal/gmail"
	"github.com/teemow/beefewer/internal/google"
	"github.com/teemow/beefewer/internal/instrumentation"
	"github.com/teemow/beefewer/internal/logging"
	"github.com/teemow/beefewer/internal/reminder"
)

// newLogger returns the process logger. Logs go to stderr so that stdout
// only carries the run summary.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// telemetry bundles the instrumentation shared by all commands.
type telemetry struct {
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	config   instrumentation.Config
}

func newTelemetry(ctx context.Context, logger *slog.Logger) (*telemetry, error) {
	cfg := instrumentation.DefaultConfig()
	cfg.ServiceVersion = version
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return &telemetry{
		provider: provider,
		audit:    instrumentation.NewAuditLogger(logger, cfg.AuditLogging),
		config:   cfg,
	}, nil
}

func (t *telemetry) Metrics() *instrumentation.Metrics {
	return t.provider.Metrics()
}

func (t *telemetry) Shutdown(ctx context.Context, logger *slog.Logger) {
	if err := t.provider.Shutdown(ctx); err != nil {
		logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// newReconciler wires a Gmail and a Beeminder client into a Reconciler for
// account. It fails without a stored Google token or a Beeminder token.
func newReconciler(ctx context.Context, account string, t *telemetry, logger *slog.Logger) (*reminder.Reconciler, error) {
	token, err := readBeeminderToken()
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded beeminder token", "token", logging.SanitizeToken(token))

	mailbox, err := gmail.NewClientForAccount(ctx, account, gmail.WithMetrics(t.Metrics()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
	}

	goals := beeminder.NewClient(token,
		beeminder.WithBaseURL(beeminderBaseURL()),
		beeminder.WithMetrics(t.Metrics()),
	)

	return reminder.New(mailbox, goals,
		reminder.WithLogger(logging.NewSlogAdapter(logging.WithAccount(logger, account))),
		reminder.WithMetrics(t.Metrics()),
		reminder.WithAuditLogger(t.audit),
	), nil
}

// authorizer runs the first-time Google authorization on a terminal.
type authorizer struct {
	tokens google.TokenStore
	in     io.Reader
	out    io.Writer
	// interactive is false when stdin or stdout is not a terminal
	interactive bool
}

func newAuthorizer() *authorizer {
	return &authorizer{
		tokens:      google.NewFileTokenStore(),
		in:          os.Stdin,
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// ensureToken makes sure account has a stored Google token, asking the user
// for an authorization code if it does not.
func (a *authorizer) ensureToken(ctx context.Context, account string) error {
	if a.tokens.HasTokenForAccount(account) {
		return nil
	}
	if !a.interactive {
		return fmt.Errorf("no Google token for account %s: run 'beefewer cleanup --account %s' in a terminal to authorize", account, account)
	}

	authURL, err := a.tokens.AuthURL(account)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(a.out, "Go to the following link in your browser to authorize %s:\n\n  %s\n\n", bold(account), color.CyanString(authURL))
	fmt.Fprint(a.out, "Enter verification code: ")

	code, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no verification code entered")
	}

	if err := a.tokens.Exchange(ctx, account, code); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	fmt.Fprintln(a.out, color.GreenString("Authorized."))
	return nil
}
