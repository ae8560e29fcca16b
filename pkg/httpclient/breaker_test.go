package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, 30*time.Second)
	cb.now = func() time.Time { return now }

	t.Run("opens after threshold", func(t *testing.T) {
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		cb.RecordFailure()
		assert.Equal(t, CircuitClosed, cb.State())
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("single probe after timeout", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		assert.True(t, cb.Allow())
		assert.Equal(t, CircuitHalfOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("failed probe re-opens", func(t *testing.T) {
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("successful probe closes", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		assert.True(t, cb.Allow())
		cb.RecordSuccess()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})

	t.Run("reset", func(t *testing.T) {
		for range 3 {
			cb.RecordFailure()
		}
		cb.Reset()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.True(t, cb.Allow())
	})
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(99).String())
}
