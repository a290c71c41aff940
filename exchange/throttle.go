package exchange

import (
	"sync"
	"time"

	"github.com/lukehollenback/bourse/structs/evictingqueue"
)

const throttleHistorySize = 64

//
// Clock is the time source used by a Throttle. Tests substitute a fake one.
//
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

//
// SystemClock returns the wall clock.
//
func SystemClock() Clock {
	return systemClock{}
}

//
// Throttle spaces outbound requests so that consecutive request starts are at least a fixed
// interval apart. It has no burst allowance and no backoff: a call simply sleeps off whatever is
// left of the interval since the previous start. The first call never waits.
//
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	last     time.Time
	starts   *evictingqueue.EvictingQueue[time.Time]
}

//
// NewThrottle creates a throttle enforcing interval between request starts. A nil clock means the
// wall clock.
//
func NewThrottle(interval time.Duration, clock Clock) *Throttle {
	if clock == nil {
		clock = SystemClock()
	}

	return &Throttle{
		interval: interval,
		clock:    clock,
		starts:   evictingqueue.New[time.Time](throttleHistorySize),
	}
}

func (o *Throttle) Interval() time.Duration {
	return o.interval
}

//
// Wait blocks until the interval since the previous start has elapsed and records now as the new
// start. It returns how long it slept. The wait cannot be interrupted.
//
func (o *Throttle) Wait() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()

	var slept time.Duration

	if !o.last.IsZero() {
		if remaining := o.interval - o.clock.Now().Sub(o.last); remaining > 0 {
			o.clock.Sleep(remaining)
			slept = remaining
		}
	}

	o.last = o.clock.Now()
	o.starts.Add(o.last)

	return slept
}

//
// Starts returns the most recent request start times, oldest first.
//
func (o *Throttle) Starts() []time.Time {
	return o.starts.Slice()
}

//
// Nonce is the strictly increasing counter sent with every authenticated request.
//
type Nonce struct {
	mu   sync.Mutex
	next int64
}

//
// NewNonce seeds the counter. Venues conventionally seed it with the current unix time so that a
// restarted process keeps moving forward.
//
func NewNonce(seed int64) *Nonce {
	return &Nonce{next: seed}
}

//
// Next returns the current value and advances the counter by one.
//
func (o *Nonce) Next() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := o.next
	o.next++

	return n
}

//
// Peek returns the value the next call to Next will return.
//
func (o *Nonce) Peek() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.next
}
