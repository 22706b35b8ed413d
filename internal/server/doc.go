// Package server provides the shared state of the MCP server and the
// HTTP endpoints of the periodic runner.
//
// ServerContext caches one reminder.Reconciler per Google account, built
// lazily by a ReconcilerFactory, together with the metrics recorder and
// audit logger the MCP tools report to.
//
// MetricsServer exposes the instrumentation provider's Prometheus registry
// on /metrics. With a HealthChecker attached it also serves:
//   - /healthz: liveness
//   - /readyz: readiness, including whether the last run failed
//   - /healthz/detailed: uptime and the last run's outcome
package server
