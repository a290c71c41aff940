package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// fakeClock only moves when something sleeps on it or a test advances it.
//
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_600_000_000, 0)}
}

func (o *fakeClock) Now() time.Time { return o.now }

func (o *fakeClock) Sleep(d time.Duration) {
	o.slept = append(o.slept, d)
	o.now = o.now.Add(d)
}

func (o *fakeClock) advance(d time.Duration) {
	o.now = o.now.Add(d)
}

func TestThrottleFirstCallDoesNotWait(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(250*time.Millisecond, clock)

	assert.Equal(t, time.Duration(0), throttle.Wait())
	assert.Empty(t, clock.slept)
}

func TestThrottleSpacesCallStarts(t *testing.T) {
	const interval = 250 * time.Millisecond

	clock := newFakeClock()
	throttle := NewThrottle(interval, clock)

	//
	// Calls of varying duration, some shorter and some longer than the interval.
	//
	durations := []time.Duration{0, 10 * time.Millisecond, 400 * time.Millisecond, 249 * time.Millisecond, 0}

	for _, d := range durations {
		throttle.Wait()
		clock.advance(d)
	}

	starts := throttle.Starts()
	require.Len(t, starts, len(durations))

	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval, "calls %d and %d started too close together", i-1, i)
	}

	assert.GreaterOrEqual(t, starts[len(starts)-1].Sub(starts[0]), time.Duration(len(starts)-1)*interval)
}

func TestThrottleDoesNotSleepAfterSlowCall(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(time.Second, clock)

	throttle.Wait()
	clock.advance(2 * time.Second)

	assert.Equal(t, time.Duration(0), throttle.Wait())
	assert.Empty(t, clock.slept)
}

func TestThrottleSleepsRemainder(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(time.Second, clock)

	throttle.Wait()
	clock.advance(300 * time.Millisecond)

	assert.Equal(t, 700*time.Millisecond, throttle.Wait())
}

func TestNonceIncrementsByOne(t *testing.T) {
	nonce := NewNonce(100)

	assert.Equal(t, int64(100), nonce.Peek())
	assert.Equal(t, int64(100), nonce.Next())
	assert.Equal(t, int64(101), nonce.Next())
	assert.Equal(t, int64(102), nonce.Peek())
}
