package connect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker(t *testing.T) {
	t.Run("stays closed below threshold", func(t *testing.T) {
		b := newBreaker(3, time.Minute)
		b.RecordFailure()
		b.RecordFailure()
		assert.True(t, b.Allow())
		assert.False(t, b.IsOpen())
	})

	t.Run("opens at threshold", func(t *testing.T) {
		b := newBreaker(3, time.Minute)
		for i := 0; i < 3; i++ {
			b.RecordFailure()
		}
		assert.False(t, b.Allow())
		assert.True(t, b.IsOpen())
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		b := newBreaker(3, time.Minute)
		b.RecordFailure()
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordFailure()
		assert.True(t, b.Allow())
	})

	t.Run("half-opens after cooldown", func(t *testing.T) {
		b := newBreaker(1, 10*time.Millisecond)
		b.RecordFailure()
		assert.False(t, b.Allow())

		time.Sleep(15 * time.Millisecond)
		assert.True(t, b.Allow())
		assert.False(t, b.IsOpen())
	})
}
