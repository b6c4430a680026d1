package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampler(t *testing.T) {
	t.Run("rate 1 keeps everything", func(t *testing.T) {
		s := NewSampler(1.0)
		for i := 0; i < 100; i++ {
			assert.True(t, s.ShouldPublish("pipeline.start"))
		}
	})

	t.Run("rate 0 drops everything", func(t *testing.T) {
		s := NewSampler(0)
		for i := 0; i < 100; i++ {
			assert.False(t, s.ShouldPublish("pipeline.view"))
		}
	})

	t.Run("per-action override wins", func(t *testing.T) {
		s := NewSampler(1.0)
		s.SetRate("pipeline.view", 0)
		assert.False(t, s.ShouldPublish("pipeline.view"))
		assert.True(t, s.ShouldPublish("pipeline.start"))
	})

	t.Run("rates are clamped", func(t *testing.T) {
		s := NewSampler(42)
		assert.True(t, s.ShouldPublish("anything"))
		s.SetRate("x", -3)
		assert.False(t, s.ShouldPublish("x"))
	})
}
