package searcher

import "slices"

// ValueRescaler counts how many nodes currently hold each exact mean so the
// tree's running min and max are known when values are normalized.
type ValueRescaler struct {
	enabled bool
	counts  map[float64]int
	keys    []float64 // sorted keys of counts
}

func NewValueRescaler(enabled bool) *ValueRescaler {
	return &ValueRescaler{
		enabled: enabled,
		counts:  make(map[float64]int),
	}
}

func (r *ValueRescaler) Enabled() bool {
	return r != nil && r.enabled
}

// Update moves one reference from oldValue to newValue. oldValue is only
// released if some node holds it; fresh nodes start at zero without a reference.
func (r *ValueRescaler) Update(oldValue, newValue float64) {
	if !r.Enabled() {
		return
	}
	if n, ok := r.counts[oldValue]; ok {
		if n <= 0 {
			panic("value rescaler holds a non-positive reference count")
		}
		if n == 1 {
			delete(r.counts, oldValue)
			r.removeKey(oldValue)
		} else {
			r.counts[oldValue] = n - 1
		}
	}
	if _, ok := r.counts[newValue]; !ok {
		r.insertKey(newValue)
	}
	r.counts[newValue]++
}

func (r *ValueRescaler) insertKey(value float64) {
	i, _ := slices.BinarySearch(r.keys, value)
	r.keys = slices.Insert(r.keys, i, value)
}

func (r *ValueRescaler) removeKey(value float64) {
	if i, found := slices.BinarySearch(r.keys, value); found {
		r.keys = slices.Delete(r.keys, i, i+1)
	}
}

// Len is the number of distinct live values.
func (r *ValueRescaler) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *ValueRescaler) Count(value float64) int {
	if r == nil {
		return 0
	}
	return r.counts[value]
}

func (r *ValueRescaler) Min() float64 {
	if r.Len() == 0 {
		panic("value rescaler is empty")
	}
	return r.keys[0]
}

func (r *ValueRescaler) Max() float64 {
	if r.Len() == 0 {
		panic("value rescaler is empty")
	}
	return r.keys[len(r.keys)-1]
}

// Normalize maps value linearly from [Min, Max] onto [-1, 1], clamped.
// With fewer than two distinct values the range is degenerate and 1 is returned.
func (r *ValueRescaler) Normalize(value float64) float64 {
	if r.Len() < 2 {
		return 1
	}
	lower, upper := r.Min(), r.Max()
	v := (value - lower) / (upper - lower)
	return min(1, max(-1, 2*v-1))
}

func (r *ValueRescaler) Reset() {
	clear(r.counts)
	r.keys = r.keys[:0]
}
