package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/metrics"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
)

// EventSource fills dst with exactly n freshly generated events, reusing its backing storage
type EventSource interface {
	Generate(n int, dst []*domain.Event) []*domain.Event
}

// Config configures a load run
type Config struct {
	TotalEvents int64
	BatchSize   int

	// MaxEventsPerSecond caps throughput at batch boundaries; zero means unlimited
	MaxEventsPerSecond float64
}

// Result summarizes a finished, failed, or cancelled run
type Result struct {
	Requested   int64
	Transferred int64
	Batches     int64
	Elapsed     time.Duration
}

// Throughput returns acknowledged events per second
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Transferred) / r.Elapsed.Seconds()
}

// Loader moves events from the source to the sink one batch at a time.
// At most one batch is in flight; the next batch is generated only after
// the sink has acknowledged the previous one.
type Loader struct {
	source   EventSource
	sink     repository.EventRepository
	config   Config
	counters *Counters
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewLoader creates a new loader
func NewLoader(source EventSource, sink repository.EventRepository, config Config, m *metrics.Metrics, log *zap.Logger) (*Loader, error) {
	if config.TotalEvents <= 0 {
		return nil, domain.InvalidConfigurationf("total events must be positive, got %d", config.TotalEvents)
	}
	if config.BatchSize <= 0 {
		return nil, domain.InvalidConfigurationf("batch size must be positive, got %d", config.BatchSize)
	}
	if config.MaxEventsPerSecond < 0 {
		return nil, domain.InvalidConfigurationf("max events per second must not be negative, got %v", config.MaxEventsPerSecond)
	}

	l := &Loader{
		source:   source,
		sink:     sink,
		config:   config,
		counters: NewCounters(config.TotalEvents),
		metrics:  m,
		log:      log,
	}
	if config.MaxEventsPerSecond > 0 {
		// burst of one full batch so WaitN never rejects a batch outright
		l.limiter = rate.NewLimiter(rate.Limit(config.MaxEventsPerSecond), config.BatchSize)
	}
	return l, nil
}

// Counters exposes the run counters to concurrent readers
func (l *Loader) Counters() *Counters {
	return l.counters
}

// Run transfers TotalEvents events. Cancellation is observed only between
// batches; a batch already handed to the sink runs to completion. On
// cancellation the result reflects the last acknowledged batch and the
// context error is returned. A sink failure aborts the run with a
// *domain.TransportError.
func (l *Loader) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	l.counters.start(started)
	defer func() { l.counters.finish(time.Now()) }()
	if l.metrics != nil {
		l.metrics.SetTarget(l.config.TotalEvents)
	}

	l.log.Info("Starting load",
		zap.Int64("total_events", l.config.TotalEvents),
		zap.Int("batch_size", l.config.BatchSize),
		zap.Float64("max_events_per_second", l.config.MaxEventsPerSecond))

	// the sink must finish an accepted batch even if the run is cancelled meanwhile
	sinkCtx := context.WithoutCancel(ctx)
	batch := make([]*domain.Event, 0, l.config.BatchSize)

	for {
		transferred := l.counters.Transferred()
		remaining := l.config.TotalEvents - transferred
		if remaining <= 0 {
			break
		}

		if err := ctx.Err(); err != nil {
			return l.cancelled(started, err)
		}

		n := l.config.BatchSize
		if remaining < int64(n) {
			n = int(remaining)
		}

		if l.limiter != nil {
			if err := l.limiter.WaitN(ctx, n); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return l.cancelled(started, ctxErr)
				}
				// the wait would overrun the run deadline
				return l.cancelled(started, context.DeadlineExceeded)
			}
		}

		genStart := time.Now()
		batch = l.source.Generate(n, batch)
		genDur := time.Since(genStart)

		sendStart := time.Now()
		inserted, err := l.sink.InsertBatch(sinkCtx, batch)
		sendDur := time.Since(sendStart)

		if err == nil && inserted != n {
			err = fmt.Errorf("sink acknowledged %d of %d events", inserted, n)
		}
		if err != nil {
			if l.metrics != nil {
				l.metrics.RecordFailure(sendDur)
			}
			l.log.Error("Failed to transfer batch",
				zap.Int64("batch", l.counters.Batches()+1),
				zap.Int("batch_size", n),
				zap.Int64("transferred", transferred),
				zap.Error(err))
			return l.result(started), &domain.TransportError{
				Transferred: transferred,
				Batch:       l.counters.Batches() + 1,
				Err:         err,
			}
		}

		l.counters.advance(n)
		if l.metrics != nil {
			l.metrics.RecordBatch(n, genDur, sendDur)
		}

		l.log.Debug("Batch transferred",
			zap.Int64("batch", l.counters.Batches()),
			zap.Int("events", n),
			zap.Duration("generate", genDur),
			zap.Duration("transfer", sendDur))
	}

	result := l.result(started)
	l.log.Info("Load complete",
		zap.Int64("transferred", result.Transferred),
		zap.Int64("batches", result.Batches),
		zap.Duration("elapsed", result.Elapsed),
		zap.Float64("events_per_second", result.Throughput()))

	return result, nil
}

func (l *Loader) cancelled(started time.Time, err error) (Result, error) {
	result := l.result(started)
	l.log.Warn("Load cancelled at batch boundary",
		zap.Int64("transferred", result.Transferred),
		zap.Int64("batches", result.Batches),
		zap.Error(err))
	return result, err
}

func (l *Loader) result(started time.Time) Result {
	return Result{
		Requested:   l.config.TotalEvents,
		Transferred: l.counters.Transferred(),
		Batches:     l.counters.Batches(),
		Elapsed:     time.Since(started),
	}
}
