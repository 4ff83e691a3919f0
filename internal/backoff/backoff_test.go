package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelaySchedule(t *testing.T) {
	p := Policy{Base: time.Second, Max: 30 * time.Second, MaxAttempts: 10}

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}

	for i, w := range want {
		assert.Equal(t, w, p.Delay(i+1), "attempt %d", i+1)
	}
}

func TestDelayClampsAttempt(t *testing.T) {
	p := Policy{Base: 2 * time.Second, Max: time.Minute}

	assert.Equal(t, 2*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(-3))
}

func TestDelayHugeAttemptStaysCapped(t *testing.T) {
	p := Policy{Base: time.Second, Max: 30 * time.Second}

	// Large enough to overflow a naive shift.
	assert.Equal(t, 30*time.Second, p.Delay(80))
}

func TestExhausted(t *testing.T) {
	p := Policy{Base: time.Second, Max: time.Minute, MaxAttempts: 3}

	assert.False(t, p.Exhausted(1))
	assert.False(t, p.Exhausted(3))
	assert.True(t, p.Exhausted(4))
}
