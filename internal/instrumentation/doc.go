// Package instrumentation provides OpenTelemetry instrumentation for beefewer.
//
// # Metrics
//
//   - api_operations_total / api_operation_duration_seconds: Gmail and
//     Beeminder calls by service, operation and status
//   - reconcile_runs_total / reconcile_run_duration_seconds: whole runs
//   - reminders_classified_total: reminders found, by kind
//   - reminder_decisions_total: archive, keep and skip outcomes
//   - threads_archived_total: threads removed from the inbox
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds: MCP tools
//
// # Tracing
//
// Spans are created for each run (reminder.run), each remote call
// (gmail.<op>, beeminder.<op>) and each MCP tool call (tool.<name>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_SUBJECTS: audit trail
//
// The audit trail records every archive decision as a reminder_archived or
// reminder_kept log record.
package instrumentation
