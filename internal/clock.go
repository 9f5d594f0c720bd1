// Monotonic microsecond clock, wrap-safe arithmetic.

package flightsched_internal

import "time"

// Clock is the only time source the scheduler core consumes. It is deliberately
// narrow (a single method) so that firmware can supply a free-running hardware
// timer and tests can supply a fully controlled fake.
type Clock interface {
	// Micros returns a monotonically increasing microsecond counter. It is
	// allowed, and expected, to wrap around uint32 (~71.6 minutes).
	Micros() uint32
}

// cmpTimeUs implements the signed-difference comparator used for every
// scheduling decision in the core: cmp(a, b) = (signed)(a - b). Using this
// instead of the naive a < b / a > b is what makes every comparison correct
// across a wrap of the underlying counter (see property P6).
func cmpTimeUs(a, b uint32) int32 {
	return int32(a - b)
}

// timeUsBefore reports whether a happened strictly before b, wrap-safe.
func timeUsBefore(a, b uint32) bool {
	return cmpTimeUs(a, b) < 0
}

// timeUsAtOrAfter reports whether a happened at or after b, wrap-safe.
func timeUsAtOrAfter(a, b uint32) bool {
	return cmpTimeUs(a, b) >= 0
}

// RealClock drives the scheduler from the host's wall clock, truncated to
// microsecond resolution. It is the Clock implementation cmd/flightsim uses;
// on an actual MCU this would be backed by a free-running hardware timer
// instead, which is why the scheduler core never calls time.Now() itself.
type RealClock struct {
	epoch time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{epoch: time.Now()}
}

func (c *RealClock) Micros() uint32 {
	return uint32(time.Since(c.epoch).Microseconds())
}
