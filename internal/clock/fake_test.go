package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake()

	var order []string
	f.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	f.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	f.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	f.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, f.Pending())
}

func TestFakeDoesNotFireEarly(t *testing.T) {
	f := NewFake()

	fired := false
	f.AfterFunc(10*time.Second, func() { fired = true })

	f.Advance(9 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 1, f.Pending())

	f.Advance(1 * time.Second)
	assert.True(t, fired)
}

func TestFakeStopPreventsFiring(t *testing.T) {
	f := NewFake()

	fired := false
	timer := f.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	f.Advance(2 * time.Second)
	assert.False(t, fired)

	// Second stop is a no-op.
	assert.False(t, timer.Stop())
}

func TestFakeChainedTimers(t *testing.T) {
	f := NewFake()

	var fires int
	var tick func()
	tick = func() {
		fires++
		if fires < 3 {
			f.AfterFunc(time.Second, tick)
		}
	}
	f.AfterFunc(time.Second, tick)

	// One Advance spanning all three chained deadlines fires all three.
	f.Advance(3 * time.Second)
	assert.Equal(t, 3, fires)
}

func TestFakeCallbackSeesDeadlineTime(t *testing.T) {
	f := NewFake()
	start := f.Now()

	var at time.Time
	f.AfterFunc(7*time.Second, func() { at = f.Now() })

	f.Advance(10 * time.Second)
	assert.Equal(t, start.Add(7*time.Second), at)
	assert.Equal(t, start.Add(10*time.Second), f.Now())
}
