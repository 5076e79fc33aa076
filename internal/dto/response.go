package dto

import "time"

// Run statuses reported in RunSummary
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"sink_unavailable"`
	Message string `json:"message,omitempty" example:"dial tcp 127.0.0.1:9000: connect: connection refused"`
}

// HealthResponse represents the status server health check response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Sink   string `json:"sink" example:"clickhouse"`
}

// ProgressResponse represents live progress of the current load run
type ProgressResponse struct {
	RunID           string  `json:"run_id" example:"5b1c0c9e-0d4f-4a53-9a5e-8f3f5d0f1d11"`
	Total           int64   `json:"total" example:"100000000"`
	Transferred     int64   `json:"transferred" example:"25000000"`
	Batches         int64   `json:"batches" example:"500"`
	Percent         float64 `json:"percent" example:"25"`
	EventsPerSecond float64 `json:"events_per_second" example:"812345.6"`
	ElapsedSeconds  float64 `json:"elapsed_seconds" example:"30.8"`
	Done            bool    `json:"done" example:"false"`

	// ETASeconds is omitted until a rate can be derived
	ETASeconds *float64 `json:"eta_seconds,omitempty" example:"92.3"`
}

// RunSummary is the outcome of one load run, logged and published when a queue is configured
type RunSummary struct {
	RunID             string    `json:"run_id"`
	Sink              string    `json:"sink"`
	Seed              uint64    `json:"seed"`
	Status            string    `json:"status"`
	Requested         int64     `json:"requested"`
	Transferred       int64     `json:"transferred"`
	Batches           int64     `json:"batches"`
	ElapsedSeconds    float64   `json:"elapsed_seconds"`
	EventsPerSecond   float64   `json:"events_per_second"`
	BaselineEvents    int64     `json:"baseline_events"`
	FinalEvents       int64     `json:"final_events"`
	FinalStorageBytes int64     `json:"final_storage_bytes"`
	Error             string    `json:"error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}
