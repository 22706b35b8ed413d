// Package logging provides structured logging utilities for beefewer.
//
// It centralizes attribute naming on top of the standard library's slog
// package so that reconciliation runs, Gmail threads and Beeminder goals are
// always logged under the same keys.
//
// Usage:
//
//	logger := logging.WithOperation(slog.Default(), "cleanup")
//	logger.Info("archiving thread",
//	    logging.Thread(id),
//	    logging.Goal("alice", "weight"))
//
// Tokens are never logged directly; use SanitizeToken.
package logging
