package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	t.Run("After fires once at its due time", func(t *testing.T) {
		m := NewManual()
		var fired int
		m.After(400*time.Millisecond, func() { fired++ })

		m.Advance(399 * time.Millisecond)
		assert.Equal(t, 0, fired)

		m.Advance(time.Millisecond)
		assert.Equal(t, 1, fired)

		m.Advance(time.Second)
		assert.Equal(t, 1, fired)
		assert.Equal(t, 0, m.Pending())
	})

	t.Run("Every repeats until cancelled", func(t *testing.T) {
		m := NewManual()
		var ticks int
		cancel := m.Every(100*time.Millisecond, func() { ticks++ })

		m.Advance(350 * time.Millisecond)
		assert.Equal(t, 3, ticks)

		cancel()
		cancel()
		m.Advance(time.Second)
		assert.Equal(t, 3, ticks)
	})

	t.Run("callbacks fire in due order", func(t *testing.T) {
		m := NewManual()
		var order []int
		for i := 3; i >= 0; i-- {
			i := i
			m.After(time.Duration(i)*400*time.Millisecond, func() { order = append(order, i) })
		}
		m.Advance(2 * time.Second)
		assert.Equal(t, []int{0, 1, 2, 3}, order)
	})

	t.Run("callback may cancel another", func(t *testing.T) {
		m := NewManual()
		var second bool
		var cancelSecond Cancel
		m.After(10*time.Millisecond, func() { cancelSecond() })
		cancelSecond = m.After(20*time.Millisecond, func() { second = true })

		m.Advance(time.Second)
		assert.False(t, second)
	})

	t.Run("callback may schedule", func(t *testing.T) {
		m := NewManual()
		var nested bool
		m.After(10*time.Millisecond, func() {
			m.After(10*time.Millisecond, func() { nested = true })
		})
		m.Advance(20 * time.Millisecond)
		assert.True(t, nested)
		assert.Equal(t, 20*time.Millisecond, m.Now())
	})
}

func TestReal(t *testing.T) {
	t.Run("After", func(t *testing.T) {
		done := make(chan struct{})
		New().After(time.Millisecond, func() { close(done) })

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("After callback did not fire")
		}
	})

	t.Run("Every stops on cancel", func(t *testing.T) {
		var ticks atomic.Int32
		cancel := New().Every(time.Millisecond, func() { ticks.Add(1) })

		require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()
		cancel()

		settled := ticks.Load()
		time.Sleep(20 * time.Millisecond)
		assert.LessOrEqual(t, ticks.Load(), settled+1)
	})
}
