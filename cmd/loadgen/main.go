package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/config"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/generator"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/handler"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/logger"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/metrics"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/pipeline"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/queue"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/queue/sqs"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository/clickhouse"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository/postgres"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository/s3"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Load generator exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	runID := uuid.NewString()
	seed := generator.ResolveSeed(cfg.Generator.Seed)
	cfg.Generator.Seed = seed

	log.Info("Starting load generator",
		zap.String("environment", cfg.Service.Environment),
		zap.String("run_id", runID),
		zap.String("sink", cfg.Sink.Kind),
		zap.Int64("total_events", cfg.Pipeline.TotalEvents),
		zap.Int("batch_size", cfg.Pipeline.BatchSize),
		zap.Uint64("seed", seed))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Pipeline.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.RunTimeout)
		defer cancel()
	}

	// Open the sink
	repo, err := openSink(ctx, cfg, runID, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close sink", zap.Error(err))
		}
	}()

	svc := service.NewRunService(repo, openPublisher(ctx, cfg, log), service.RunConfig{
		RunID: runID,
		Sink:  cfg.Sink.Kind,
		Seed:  seed,
	}, log)

	// Initialize schema and read the already-loaded baseline
	if _, err := svc.Prepare(ctx); err != nil {
		return err
	}

	// Build population, sessions and synthesizer
	synth, err := generator.NewFromConfig(cfg.Generator, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loader, err := pipeline.NewLoader(synth, repo, pipeline.Config{
		TotalEvents:        cfg.Pipeline.TotalEvents,
		BatchSize:          cfg.Pipeline.BatchSize,
		MaxEventsPerSecond: cfg.Pipeline.MaxEventsPerSecond,
	}, metrics.New(reg, cfg.Sink.Kind), log)
	if err != nil {
		return err
	}

	// Start status server
	if cfg.Service.StatusPort != "" {
		if cfg.Service.Environment == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := startStatusServer(cfg, handler.NewHandler(repo, loader.Counters(), reg, runID, cfg.Sink.Kind, log), log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Failed to shut down status server", zap.Error(err))
			}
		}()
	}

	// Start progress reporter
	reportCtx, stopReporting := context.WithCancel(context.Background())
	defer stopReporting()
	go pipeline.NewReporter(loader.Counters(), cfg.Pipeline.ProgressInterval, log).Run(reportCtx)

	_, err = svc.Execute(ctx, loader)
	return err
}

func openSink(ctx context.Context, cfg *config.Config, runID string, log *zap.Logger) (repository.EventRepository, error) {
	switch cfg.Sink.Kind {
	case config.SinkClickHouse:
		client, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
		if err != nil {
			return nil, err
		}
		return clickhouse.NewRepository(client, log), nil

	case config.SinkPostgres:
		pool, err := postgres.NewPool(ctx, &cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepository(pool, cfg.Postgres.Table, log), nil

	case config.SinkS3:
		client, err := s3.NewClient(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		return s3.NewRepository(client, cfg.S3, runID, log), nil
	}

	return nil, fmt.Errorf("unsupported sink kind %q", cfg.Sink.Kind)
}

// openPublisher returns nil when no queue is configured or the client cannot be built
func openPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) queue.SummaryPublisher {
	if cfg.SQS.QueueURL == "" {
		return nil
	}

	client, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Warn("Run summaries will not be published", zap.Error(err))
		return nil
	}
	return client
}

func startStatusServer(cfg *config.Config, h http.Handler, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Service.StatusPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Status server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Status server error", zap.Error(err))
		}
	}()

	return srv
}
