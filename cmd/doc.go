// Package cmd implements the command-line interface for beefewer.
//
// This package provides the following commands:
//   - cleanup: Archive Beeminder reminder emails whose goal already has data
//   - watch: Run cleanup periodically, optionally serving metrics
//   - restore: Move archived threads back to the inbox
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The cleanup command is the default command when no subcommand is specified.
//
// Configuration is read from the environment, after loading an optional
// .env file from the working directory:
//   - BEEMINDER_AUTH_TOKEN: Beeminder auth token (else ~/keys/beeminder-beefewer.token)
//   - BEEMINDER_BASE_URL: Beeminder API base URL
//   - GOOGLE_CLIENT_SECRET_FILE or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET: Google OAuth client
//   - INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER, OTEL_*: telemetry
package cmd
