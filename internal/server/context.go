package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/beefewer/internal/instrumentation"
	"github.com/teemow/beefewer/internal/reminder"
)

// ReconcilerFactory builds a Reconciler for a Google account.
type ReconcilerFactory func(ctx context.Context, account string) (*reminder.Reconciler, error)

// ServerContext holds what the MCP tools share: one cached Reconciler per
// account, the metrics recorder and the audit logger.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	factory     ReconcilerFactory
	reconcilers map[string]*reminder.Reconciler // Maps account name to Reconciler
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context. Reconcilers are created
// lazily on first use of an account.
func NewServerContext(ctx context.Context, factory ReconcilerFactory) (*ServerContext, error) {
	if factory == nil {
		return nil, fmt.Errorf("reconciler factory is required")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		factory:     factory,
		reconcilers: make(map[string]*reminder.Reconciler),
	}, nil
}

// ReconcilerForAccount returns the Reconciler for a specific account,
// creating and caching it on first use.
func (sc *ServerContext) ReconcilerForAccount(account string) (*reminder.Reconciler, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}

	if r, ok := sc.reconcilers[account]; ok {
		return r, nil
	}

	r, err := sc.factory(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to set up account %s: %w", account, err)
	}

	sc.reconcilers[account] = r
	return r, nil
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
