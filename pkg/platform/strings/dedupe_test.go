package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and blanks", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  email ", "webhook", "email", "", "   "})
		assert.Equal(t, []string{"email", "webhook"}, got)
	})

	t.Run("preserves first-occurrence order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"c", "a", "b", "a", "c"})
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("empty input untouched", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
	})
}

func TestDedupeAndTrimLower(t *testing.T) {
	got := DedupeAndTrimLower([]string{"  Email ", "WEBHOOK", "email"})
	assert.Equal(t, []string{"email", "webhook"}, got)
}
