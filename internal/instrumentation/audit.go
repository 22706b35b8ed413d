package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/beefewer/internal/logging"
)

// DecisionEvent captures one archive decision for the audit trail.
type DecisionEvent struct {
	RunID        string
	ThreadID     string
	Username     string
	Goal         string
	Kind         string // "direct" or "accelerating"
	Subject      string
	DataDate     time.Time
	ReminderDate time.Time
	Archive      bool
	DryRun       bool
}

// LogAttrs returns slog attributes for the event. The subject is only
// included when includeSubject is set.
func (e *DecisionEvent) LogAttrs(includeSubject bool) []slog.Attr {
	attrs := []slog.Attr{
		logging.RunID(e.RunID),
		logging.Thread(e.ThreadID),
		logging.Goal(e.Username, e.Goal),
		slog.String("kind", e.Kind),
		slog.String("data_date", e.DataDate.Format(time.DateOnly)),
		slog.String("reminder_date", e.ReminderDate.Format(time.DateOnly)),
		slog.Bool("archive", e.Archive),
	}
	if e.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	if includeSubject && e.Subject != "" {
		attrs = append(attrs, slog.String("subject", e.Subject))
	}
	return attrs
}

// ToolInvocation captures a single MCP tool call.
type ToolInvocation struct {
	Tool      string
	Account   string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
}

// NewToolInvocation creates a new ToolInvocation with timing started.
func NewToolInvocation(ctx context.Context, tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
		TraceID:   GetTraceID(ctx),
	}
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

func (ti *ToolInvocation) logAttrs() []slog.Attr {
	attrs := []slog.Attr{
		logging.Tool(ti.Tool),
		slog.Duration(logging.KeyDuration, ti.Duration),
		logging.Status(ti.Status()),
	}
	if ti.Account != "" && ti.Account != "default" {
		attrs = append(attrs, logging.Account(ti.Account))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, ti.Error))
	}
	return attrs
}

// AuditLogger writes the audit trail of archive decisions and tool calls.
// A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger          *slog.Logger
	includeSubjects bool
	enabled         bool
}

// NewAuditLogger creates a new AuditLogger with the given configuration.
// If logger is nil, slog.Default() is used.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:          logger,
		includeSubjects: config.IncludeSubjects,
		enabled:         config.Enabled,
	}
}

// LogDecision logs an archive or keep decision.
func (al *AuditLogger) LogDecision(ctx context.Context, e *DecisionEvent) {
	if al == nil || !al.enabled {
		return
	}
	msg := "reminder_kept"
	if e.Archive {
		msg = "reminder_archived"
	}
	al.logger.LogAttrs(ctx, slog.LevelInfo, msg, e.LogAttrs(al.includeSubjects)...)
}

// LogToolInvocation logs a finished MCP tool call.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	if ti.Success {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "tool_executed", ti.logAttrs()...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "tool_failed", ti.logAttrs()...)
	}
}
