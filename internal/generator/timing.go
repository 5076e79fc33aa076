package generator

import (
	"math/rand/v2"
	"time"
)

// BusinessHours biases event timestamps toward the [Start, End) hour window in Location.
// Off-hours candidates are kept with probability OffHoursAcceptance and otherwise
// replaced by a fresh draw, at most MaxResamples times.
type BusinessHours struct {
	Start              int
	End                int
	Location           *time.Location
	OffHoursAcceptance float64
	MaxResamples       int
}

// Contains reports whether ts falls inside the window
func (b BusinessHours) Contains(ts time.Time) bool {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	h := ts.In(loc).Hour()
	return h >= b.Start && h < b.End
}

// Bias returns ts or a resampled replacement. Once the resample budget is spent the
// current candidate is accepted as is.
func (b BusinessHours) Bias(r *rand.Rand, ts time.Time, resample func() time.Time) time.Time {
	for i := 0; i < b.MaxResamples; i++ {
		if b.Contains(ts) || r.Float64() < b.OffHoursAcceptance {
			return ts
		}
		ts = resample()
	}
	return ts
}
