package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueRescalerUpdate(t *testing.T) {
	t.Run("tracks min and max of live values", func(t *testing.T) {
		r := NewValueRescaler(true)
		r.Update(0, 0.5)
		r.Update(0, -0.25)
		r.Update(0, 2)

		require.Equal(t, 3, r.Len(), "Should hold three distinct values")
		require.Equal(t, -0.25, r.Min())
		require.Equal(t, 2.0, r.Max())
	})

	t.Run("moving the last reference drops the old value", func(t *testing.T) {
		r := NewValueRescaler(true)
		r.Update(0, 1)
		r.Update(0, 3)
		r.Update(3, 2)

		require.Equal(t, 0, r.Count(3), "Old value should be released")
		require.Equal(t, 1, r.Count(2), "New value should be referenced")
		require.Equal(t, 2.0, r.Max(), "Max should follow the released value")
	})

	t.Run("shared values are reference counted", func(t *testing.T) {
		r := NewValueRescaler(true)
		r.Update(0, 1)
		r.Update(0, 1)
		r.Update(1, 0.5)

		require.Equal(t, 1, r.Count(1), "One reference should remain")
		require.Equal(t, 2, r.Len())
	})

	t.Run("fresh nodes do not release an unheld zero", func(t *testing.T) {
		r := NewValueRescaler(true)
		r.Update(0, 0.7)

		require.Equal(t, 1, r.Len(), "Only the new value should be held")
		require.Equal(t, 0, r.Count(0))
	})

	t.Run("disabled rescaler ignores updates", func(t *testing.T) {
		r := NewValueRescaler(false)
		r.Update(0, 1)
		r.Update(0, 2)

		require.Equal(t, 0, r.Len(), "Disabled rescaler should stay empty")
		require.False(t, r.Enabled())
	})

	t.Run("reset empties the rescaler", func(t *testing.T) {
		r := NewValueRescaler(true)
		r.Update(0, 1)
		r.Update(0, 2)
		r.Reset()

		require.Equal(t, 0, r.Len())
		require.Panics(t, func() { r.Min() }, "Empty rescaler has no minimum")
	})
}

func TestValueRescalerNormalize(t *testing.T) {
	r := NewValueRescaler(true)
	require.Equal(t, 1.0, r.Normalize(0.3), "Empty range should be neutral")

	r.Update(0, -1)
	r.Update(0, 3)
	require.InDelta(t, 0.0, r.Normalize(1), 1e-12, "Midpoint maps to 0")
	require.InDelta(t, 1.0, r.Normalize(10), 1e-12, "Values above the range clamp to 1")
	require.InDelta(t, -1.0, r.Normalize(-10), 1e-12, "Values below the range clamp to -1")
}
