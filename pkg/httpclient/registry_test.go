package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	c := NewWithDefaults()
	r.Register("playlist", c)

	assert.Same(t, c, r.Get("playlist"))
	assert.Nil(t, r.Get("missing"))
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("stream", NewWithDefaults())
	r.Register("playlist", NewWithDefaults())
	assert.Equal(t, []string{"playlist", "stream"}, r.Names())
}

func TestRegistry_CircuitBreakerStatuses(t *testing.T) {
	r := NewRegistry()
	c := NewWithDefaults()
	r.Register("stream", c)

	assert.Empty(t, r.CircuitBreakerStatuses())

	c.Breaker("b.example.com").RecordFailure()
	c.Breaker("a.example.com")

	statuses := r.CircuitBreakerStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "a.example.com", statuses[0].Host)
	assert.Equal(t, "b.example.com", statuses[1].Host)
	assert.Equal(t, "stream", statuses[1].Client)
	assert.Equal(t, "closed", statuses[1].State)
	assert.Equal(t, 1, statuses[1].Failures)
}
