package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/dto"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/queue"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
)

const maintenanceTimeout = 5 * time.Minute

// RunConfig identifies a load run in logs and summaries
type RunConfig struct {
	RunID string
	Sink  string
	Seed  uint64
}

// RunService drives one load run: sink preparation, the load itself and post-run reporting
type RunService struct {
	repository repository.EventRepository
	publisher  queue.SummaryPublisher
	config     RunConfig
	baseline   repository.Stats
	log        *zap.Logger
}

// NewRunService creates a new run service. publisher may be nil.
func NewRunService(repo repository.EventRepository, publisher queue.SummaryPublisher, config RunConfig, log *zap.Logger) *RunService {
	return &RunService{
		repository: repo,
		publisher:  publisher,
		config:     config,
		log:        log,
	}
}

// Prepare initializes the sink and records the already-loaded baseline
func (s *RunService) Prepare(ctx context.Context) (*repository.Stats, error) {
	if err := s.repository.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize sink: %w", err)
	}

	stats, err := s.repository.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sink baseline: %w", err)
	}
	s.baseline = *stats

	s.log.Info("Sink baseline",
		zap.String("sink", s.config.Sink),
		zap.String("events", humanize.Comma(stats.EventCount)),
		zap.String("size", humanize.Bytes(uint64(stats.StorageBytes))))

	return stats, nil
}

// Execute runs the loader and reports the outcome. The loader's error is returned unchanged.
func (s *RunService) Execute(ctx context.Context, loader Loader) (*dto.RunSummary, error) {
	started := time.Now()
	result, runErr := loader.Run(ctx)

	summary := &dto.RunSummary{
		RunID:           s.config.RunID,
		Sink:            s.config.Sink,
		Seed:            s.config.Seed,
		Status:          runStatus(runErr),
		Requested:       result.Requested,
		Transferred:     result.Transferred,
		Batches:         result.Batches,
		ElapsedSeconds:  result.Elapsed.Seconds(),
		EventsPerSecond: result.Throughput(),
		BaselineEvents:  s.baseline.EventCount,
		StartedAt:       started,
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	// post-run work must still happen after a SIGINT or run timeout
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), maintenanceTimeout)
	defer cancel()

	if result.Transferred > 0 {
		if err := s.repository.Analyze(postCtx); err != nil {
			s.log.Warn("Failed to refresh sink statistics", zap.Error(err))
		}
	}

	if stats, err := s.repository.Stats(postCtx); err != nil {
		s.log.Warn("Failed to read final sink size", zap.Error(err))
	} else {
		summary.FinalEvents = stats.EventCount
		summary.FinalStorageBytes = stats.StorageBytes
	}
	summary.FinishedAt = time.Now()

	s.report(summary, result.Elapsed, runErr)

	if s.publisher != nil {
		if err := s.publisher.PublishRunSummary(postCtx, summary); err != nil {
			s.log.Warn("Failed to publish run summary", zap.Error(err))
		}
	}

	return summary, runErr
}

func (s *RunService) report(summary *dto.RunSummary, elapsed time.Duration, runErr error) {
	fields := []zap.Field{
		zap.String("run_id", summary.RunID),
		zap.String("status", summary.Status),
		zap.String("requested", humanize.Comma(summary.Requested)),
		zap.String("transferred", humanize.Comma(summary.Transferred)),
		zap.Duration("elapsed", elapsed),
	}

	if runErr != nil {
		s.log.Error("Load run did not complete", append(fields, zap.Error(runErr))...)
		return
	}

	s.log.Info("Load run completed", append(fields,
		zap.String("throughput", humanize.Comma(int64(summary.EventsPerSecond))+" events/s"),
		zap.String("final_events", humanize.Comma(summary.FinalEvents)),
		zap.String("final_size", humanize.Bytes(uint64(summary.FinalStorageBytes))))...)
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return dto.RunCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dto.RunCancelled
	default:
		return dto.RunFailed
	}
}
