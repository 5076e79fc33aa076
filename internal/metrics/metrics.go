package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loadgen"

// Metrics holds the loader's Prometheus collectors for one run
type Metrics struct {
	targetEvents       prometheus.Gauge
	eventsTransferred  prometheus.Counter
	batchesTransferred prometheus.Counter
	batchFailures      prometheus.Counter
	generateDuration   prometheus.Histogram
	transferDuration   prometheus.Histogram
}

// New registers the loader collectors on reg, labelled with the sink kind
func New(reg prometheus.Registerer, sink string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"sink": sink}

	return &Metrics{
		targetEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "target_events",
			Help:        "Number of events requested for the current run",
			ConstLabels: labels,
		}),
		eventsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "events_transferred_total",
			Help:        "Events acknowledged by the sink",
			ConstLabels: labels,
		}),
		batchesTransferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "batches_transferred_total",
			Help:        "Batches acknowledged by the sink",
			ConstLabels: labels,
		}),
		batchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "batch_failures_total",
			Help:        "Batches the sink rejected or failed to acknowledge",
			ConstLabels: labels,
		}),
		generateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "batch_generate_seconds",
			Help:        "Time spent synthesizing one batch",
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 14),
			ConstLabels: labels,
		}),
		transferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "batch_transfer_seconds",
			Help:        "Time from submitting a batch to the sink acknowledging it",
			Buckets:     prometheus.ExponentialBuckets(0.005, 2, 14),
			ConstLabels: labels,
		}),
	}
}

func (m *Metrics) SetTarget(total int64) {
	m.targetEvents.Set(float64(total))
}

// RecordBatch records one acknowledged batch
func (m *Metrics) RecordBatch(events int, generate, transfer time.Duration) {
	m.eventsTransferred.Add(float64(events))
	m.batchesTransferred.Inc()
	m.generateDuration.Observe(generate.Seconds())
	m.transferDuration.Observe(transfer.Seconds())
}

func (m *Metrics) RecordFailure(transfer time.Duration) {
	m.batchFailures.Inc()
	m.transferDuration.Observe(transfer.Seconds())
}
