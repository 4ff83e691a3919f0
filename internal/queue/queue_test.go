package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/clock"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

func envOf(typ string) wire.Envelope {
	return wire.Envelope{Type: typ, Timestamp: time.Now().UnixMilli()}
}

func TestDrainPreservesFIFO(t *testing.T) {
	q := New(100, time.Minute, clock.NewFake(), nil)

	q.Push(envOf("a"))
	q.Push(envOf("b"))
	q.Push(envOf("c"))

	var got []string
	sent := q.Drain(func(env wire.Envelope) error {
		got = append(got, env.Type)
		return nil
	})

	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, q.Len())
}

func TestOverflowEvictsOldest(t *testing.T) {
	q := New(100, time.Minute, clock.NewFake(), nil)

	for i := 0; i < 150; i++ {
		q.Push(envOf(fmt.Sprintf("msg-%03d", i)))
	}

	require.Equal(t, 100, q.Len())

	// The first 50 were evicted; the last 100 survive in order.
	snap := q.Snapshot()
	assert.Equal(t, "msg-050", snap[0].Envelope.Type)
	assert.Equal(t, "msg-149", snap[99].Envelope.Type)
}

func TestDrainStopsOnFailureAndRetains(t *testing.T) {
	q := New(100, time.Minute, clock.NewFake(), nil)

	q.Push(envOf("a"))
	q.Push(envOf("b"))

	sent := q.Drain(func(env wire.Envelope) error {
		return errors.New("write failed")
	})

	assert.Zero(t, sent)
	require.Equal(t, 2, q.Len())

	snap := q.Snapshot()
	assert.Equal(t, "a", snap[0].Envelope.Type)
	assert.Equal(t, 1, snap[0].Retries)
	assert.Equal(t, 0, snap[1].Retries)

	// A later successful drain delivers the retained order.
	var got []string
	sent = q.Drain(func(env wire.Envelope) error {
		got = append(got, env.Type)
		return nil
	})
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDrainDropsAfterRetryBound(t *testing.T) {
	q := New(100, time.Minute, clock.NewFake(), nil)
	q.Push(envOf("stuck"))

	fail := func(wire.Envelope) error { return errors.New("write failed") }
	for i := 0; i < MaxSendRetries; i++ {
		q.Drain(fail)
	}
	require.Equal(t, 1, q.Len())

	// Next drain drops it without calling send.
	called := false
	q.Drain(func(wire.Envelope) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.Zero(t, q.Len())
}

func TestDrainDropsExpired(t *testing.T) {
	fake := clock.NewFake()
	q := New(100, time.Minute, fake, nil)

	q.Push(envOf("old"))
	fake.Advance(2 * time.Minute)
	q.Push(envOf("fresh"))

	var got []string
	sent := q.Drain(func(env wire.Envelope) error {
		got = append(got, env.Type)
		return nil
	})

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"fresh"}, got)
}
