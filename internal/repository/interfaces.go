package repository

import (
	"context"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// Stats is the durable state of the sink as reported by the sink itself
type Stats struct {
	EventCount   int64
	StorageBytes int64
}

// EventRepository defines the bulk-transfer sink the loader writes to
type EventRepository interface {
	// InsertBatch transfers the whole batch as one unit, in the order given, using
	// domain.EventColumns. Either every event is durable or an error is returned.
	InsertBatch(ctx context.Context, events []*domain.Event) (int, error)

	// InitSchema initializes the storage (creates tables or verifies buckets)
	InitSchema(ctx context.Context) error

	// Stats returns the durable event count and storage size
	Stats(ctx context.Context) (*Stats, error)

	// Analyze refreshes the sink's planning statistics after a load
	Analyze(ctx context.Context) error

	// Ping checks if the sink is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}
