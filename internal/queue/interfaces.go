package queue

import (
	"context"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/dto"
)

// SummaryPublisher defines the interface for announcing finished load runs on a queue
type SummaryPublisher interface {
	PublishRunSummary(ctx context.Context, summary *dto.RunSummary) error
}
