package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "clickhouse")

	m.SetTarget(250000)
	m.RecordBatch(50000, 20*time.Millisecond, 150*time.Millisecond)
	m.RecordBatch(50000, 25*time.Millisecond, 140*time.Millisecond)
	m.RecordFailure(time.Second)

	assert.Equal(t, 250000.0, testutil.ToFloat64(m.targetEvents))
	assert.Equal(t, 100000.0, testutil.ToFloat64(m.eventsTransferred))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.batchesTransferred))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchFailures))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
		for _, metric := range mf.GetMetric() {
			require.Len(t, metric.GetLabel(), 1)
			assert.Equal(t, "clickhouse", metric.GetLabel()[0].GetValue())
		}
	}
	assert.True(t, names["loadgen_events_transferred_total"])
	assert.True(t, names["loadgen_batch_transfer_seconds"])
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "postgres")

	assert.Panics(t, func() { New(reg, "postgres") })
}
