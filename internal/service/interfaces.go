package service

import (
	"context"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/pipeline"
)

// Loader runs one batched load against the sink
type Loader interface {
	Run(ctx context.Context) (pipeline.Result, error)
}
