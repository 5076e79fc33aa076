package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/dto"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/pipeline"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether the sink is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ProgressSource exposes the loader counters
type ProgressSource interface {
	Snapshot() pipeline.Snapshot
}

// Handler serves the status endpoints of a running load
type Handler struct {
	sink     HealthChecker
	progress ProgressSource
	gatherer prometheus.Gatherer
	runID    string
	sinkKind string
	router   *gin.Engine
	log      *zap.Logger
}

func NewHandler(sink HealthChecker, progress ProgressSource, gatherer prometheus.Gatherer, runID, sinkKind string, log *zap.Logger) *Handler {
	h := &Handler{
		sink:     sink,
		progress: progress,
		gatherer: gatherer,
		runID:    runID,
		sinkKind: sinkKind,
		router:   gin.Default(),
		log:      log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/progress", h.getProgress)
	h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

// healthCheck handles GET /health by pinging the sink
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.sink.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", zap.String("sink", h.sinkKind), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "sink_unavailable",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: "ok",
		Sink:   h.sinkKind,
	})
}

// getProgress handles GET /progress
func (h *Handler) getProgress(c *gin.Context) {
	p := pipeline.Estimate(h.progress.Snapshot())

	response := dto.ProgressResponse{
		RunID:           h.runID,
		Total:           p.Total,
		Transferred:     p.Transferred,
		Batches:         p.Batches,
		Percent:         p.Percent,
		EventsPerSecond: p.Rate,
		ElapsedSeconds:  p.Elapsed.Seconds(),
		Done:            p.Done,
	}
	if p.ETA >= 0 {
		eta := p.ETA.Seconds()
		response.ETASeconds = &eta
	}

	c.JSON(http.StatusOK, response)
}
