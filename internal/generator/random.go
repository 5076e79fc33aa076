package generator

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// NewRand returns a PCG-backed source. Seed 0 picks a time-based seed.
func NewRand(seed uint64) *rand.Rand {
	seed = ResolveSeed(seed)
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// rngReader feeds uuid generation from a seeded source so ids are reproducible
type rngReader struct {
	r *rand.Rand
}

func (rr rngReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := rr.r.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

func newID(r *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rngReader{r: r})
	if err != nil {
		// rngReader never fails
		panic(err)
	}
	return id.String()
}

// uniformTime draws from [start, end)
func uniformTime(r *rand.Rand, start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(r.Int64N(int64(span))))
}
