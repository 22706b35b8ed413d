package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_Reconciliation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordReminder(ctx, "direct")
	m.RecordReminder(ctx, "accelerating")
	m.RecordDecision(ctx, DecisionArchive)
	m.RecordDecision(ctx, DecisionKeep)
	m.RecordDecision(ctx, DecisionSkip)
	m.RecordArchived(ctx, 3)
	m.RecordArchived(ctx, 0)
	m.RecordRun(ctx, StatusSuccess, 2*time.Second)

	assert.Equal(t, int64(2), counterTotal(t, reader, "reminders_classified_total"))
	assert.Equal(t, int64(3), counterTotal(t, reader, "reminder_decisions_total"))
	assert.Equal(t, int64(3), counterTotal(t, reader, "threads_archived_total"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "reconcile_runs_total"))
}

func TestMetrics_RecordAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAPIOperation(ctx, ServiceGmail, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordAPIOperation(ctx, ServiceBeeminder, OperationFetch, StatusError, 50*time.Millisecond)

	assert.Equal(t, int64(2), counterTotal(t, reader, "api_operations_total"))
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordToolInvocation(context.Background(), "beeminder_list_reminders", StatusSuccess, time.Second)

	assert.Equal(t, int64(1), counterTotal(t, reader, "mcp_tool_invocations_total"))
}

func TestMetrics_NilAndZeroAreNoops(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	nilMetrics.RecordRun(ctx, StatusSuccess, time.Second)
	nilMetrics.RecordAPIOperation(ctx, ServiceGmail, OperationGet, StatusSuccess, time.Second)
	nilMetrics.RecordArchived(ctx, 1)

	zero := &Metrics{}
	zero.RecordReminder(ctx, "direct")
	zero.RecordDecision(ctx, DecisionKeep)
	zero.RecordToolInvocation(ctx, "x", StatusError, time.Second)
}
