package pipeline

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Progress is the human-facing view of a Snapshot
type Progress struct {
	Total       int64         `json:"total"`
	Transferred int64         `json:"transferred"`
	Batches     int64         `json:"batches"`
	Percent     float64       `json:"percent"`
	Rate        float64       `json:"events_per_second"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Done        bool          `json:"done"`

	// ETA is negative while no rate can be derived
	ETA time.Duration `json:"eta_ns"`
}

// Estimate derives rate and ETA from a snapshot.
// rate = transferred / elapsed, ETA = (total - transferred) / rate.
func Estimate(s Snapshot) Progress {
	p := Progress{
		Total:       s.Total,
		Transferred: s.Transferred,
		Batches:     s.Batches,
		ETA:         -1,
		Done:        !s.FinishedAt.IsZero(),
	}
	if s.Total > 0 {
		p.Percent = 100 * float64(s.Transferred) / float64(s.Total)
	}
	if s.StartedAt.IsZero() {
		return p
	}

	end := s.TakenAt
	if p.Done {
		end = s.FinishedAt
	}
	p.Elapsed = end.Sub(s.StartedAt)
	if p.Elapsed <= 0 || s.Transferred == 0 {
		return p
	}

	p.Rate = float64(s.Transferred) / p.Elapsed.Seconds()
	remaining := s.Total - s.Transferred
	if remaining <= 0 {
		p.ETA = 0
		return p
	}
	p.ETA = time.Duration(float64(remaining) / p.Rate * float64(time.Second))
	return p
}

// Reporter logs progress on a fixed interval until its context ends
type Reporter struct {
	counters *Counters
	interval time.Duration
	log      *zap.Logger
}

func NewReporter(counters *Counters, interval time.Duration, log *zap.Logger) *Reporter {
	return &Reporter{counters: counters, interval: interval, log: log}
}

// Run blocks until ctx is done; call it in its own goroutine
func (r *Reporter) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(Estimate(r.counters.Snapshot()))
		}
	}
}

func (r *Reporter) report(p Progress) {
	fields := []zap.Field{
		zap.String("transferred", humanize.Comma(p.Transferred)),
		zap.String("total", humanize.Comma(p.Total)),
		zap.String("percent", humanize.FtoaWithDigits(p.Percent, 1)+"%"),
		zap.String("rate", humanize.Comma(int64(p.Rate))+" events/s"),
		zap.Duration("elapsed", p.Elapsed.Round(time.Second)),
	}
	if p.ETA >= 0 {
		fields = append(fields, zap.Duration("eta", p.ETA.Round(time.Second)))
	}
	r.log.Info("Load progress", fields...)
}
