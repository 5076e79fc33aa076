package generator

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// Choice is one weighted option of a categorical distribution
type Choice[T any] struct {
	Item   T
	Weight float64
}

// Weighted draws items with probability proportional to their weight.
// It holds no random state, so a single instance may be shared between generators
// that each bring their own *rand.Rand.
type Weighted[T any] struct {
	items      []T
	cumulative []float64
	total      float64
}

// NewWeighted builds a sampler over the given choices
func NewWeighted[T any](choices []Choice[T]) (*Weighted[T], error) {
	if len(choices) == 0 {
		return nil, domain.InvalidConfigurationf("weighted sampler requires at least one choice")
	}

	w := &Weighted[T]{
		items:      make([]T, len(choices)),
		cumulative: make([]float64, len(choices)),
	}
	for i, c := range choices {
		if !(c.Weight > 0) || math.IsInf(c.Weight, 0) {
			return nil, domain.InvalidConfigurationf("choice %d has non-positive or infinite weight %v", i, c.Weight)
		}
		w.total += c.Weight
		w.items[i] = c.Item
		w.cumulative[i] = w.total
	}

	return w, nil
}

// Pick returns one item
func (w *Weighted[T]) Pick(r *rand.Rand) T {
	return w.pickAt(r.Float64())
}

// pickAt maps u in [0,1] onto the cumulative weights. u == 1, or rounding that lands on
// the upper bound, resolves to the last item.
func (w *Weighted[T]) pickAt(u float64) T {
	target := u * w.total
	i := sort.Search(len(w.cumulative), func(i int) bool {
		return w.cumulative[i] > target
	})
	if i >= len(w.items) {
		i = len(w.items) - 1
	}
	return w.items[i]
}

// Len returns the number of choices
func (w *Weighted[T]) Len() int {
	return len(w.items)
}

// Item returns the i-th choice in declaration order
func (w *Weighted[T]) Item(i int) T {
	return w.items[i]
}

// Probability returns the selection probability of the i-th choice
func (w *Weighted[T]) Probability(i int) float64 {
	prev := 0.0
	if i > 0 {
		prev = w.cumulative[i-1]
	}
	return (w.cumulative[i] - prev) / w.total
}
