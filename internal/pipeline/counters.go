package pipeline

import (
	"sync/atomic"
	"time"
)

// Counters track one load run. The loader is the only writer; any number
// of goroutines may call Snapshot concurrently.
type Counters struct {
	total       int64
	transferred atomic.Int64
	batches     atomic.Int64
	startedAt   atomic.Int64
	finishedAt  atomic.Int64
}

// Snapshot is a consistent-enough copy of the counters at a point in time
type Snapshot struct {
	Total       int64     `json:"total"`
	Transferred int64     `json:"transferred"`
	Batches     int64     `json:"batches"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
	TakenAt     time.Time `json:"taken_at"`
}

func NewCounters(total int64) *Counters {
	return &Counters{total: total}
}

func (c *Counters) start(now time.Time) {
	c.startedAt.Store(now.UnixNano())
}

func (c *Counters) finish(now time.Time) {
	c.finishedAt.Store(now.UnixNano())
}

func (c *Counters) advance(events int) {
	c.transferred.Add(int64(events))
	c.batches.Add(1)
}

func (c *Counters) Total() int64 {
	return c.total
}

func (c *Counters) Transferred() int64 {
	return c.transferred.Load()
}

func (c *Counters) Batches() int64 {
	return c.batches.Load()
}

// Snapshot reads the counters without blocking the loader
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Total:       c.total,
		Transferred: c.transferred.Load(),
		Batches:     c.batches.Load(),
		TakenAt:     time.Now(),
	}
	if ns := c.startedAt.Load(); ns != 0 {
		s.StartedAt = time.Unix(0, ns)
	}
	if ns := c.finishedAt.Load(); ns != 0 {
		s.FinishedAt = time.Unix(0, ns)
	}
	return s
}
