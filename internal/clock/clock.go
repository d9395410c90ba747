// Package clock implements the kernel's monotonic tick counter and the
// derived (seconds, milliseconds) wall time, grounded on the original
// core's timer: a tick counter advanced only from the system-tick
// interrupt handler, read by any context under a critical section.
package clock

import "github.com/behrlich/go-rtos/internal/constants"

// Time is a snapshot of the derived wall clock.
type Time struct {
	Sec  uint64
	Msec uint64
}

// Clock holds the monotonic tick counter and resolution. It is not
// safe for concurrent use on its own: every method must be called
// under the caller's critical section, exactly as spec.md §5 requires
// for "any composite read of the time value". Clock itself does not
// take a lock — that would defeat the point of a single, short
// critical section around the caller's whole operation.
type Clock struct {
	ticks         uint64
	ticksPerMs    uint64
	resolutionSet bool
	msec          uint64
	sec           uint64
	everAdvanced  bool
}

// New returns a Clock at tick zero with the default resolution.
func New() *Clock {
	return &Clock{ticksPerMs: constants.DefaultTicksPerMillisecond}
}

// SetResolution sets ticks-per-millisecond. Per spec.md §9's resolved
// open question, this may only be called before the first Advance;
// calling it afterwards is a configuration error the caller should
// treat as fatal (see sched.Scheduler.SetResolution).
func (c *Clock) SetResolution(ticksPerMs uint64) bool {
	if c.everAdvanced || ticksPerMs == 0 {
		return false
	}
	c.ticksPerMs = ticksPerMs
	c.resolutionSet = true
	return true
}

// Advance increments the tick counter by one and rolls the derived
// (sec, msec) pair forward when a full millisecond's worth of ticks has
// elapsed. It returns true iff the tick counter wrapped from its
// maximum value back to zero.
func (c *Clock) Advance() (wrapped bool) {
	c.everAdvanced = true
	before := c.ticks
	c.ticks++
	wrapped = c.ticks == 0 && before == ^uint64(0)

	if c.ticks%c.ticksPerMs == 0 {
		c.msec++
		if c.msec%1000 == 0 {
			c.sec++
		}
	}
	return wrapped
}

// Ticks returns the raw monotonic tick counter.
func (c *Clock) Ticks() uint64 { return c.ticks }

// Now returns the derived wall-clock pair.
func (c *Clock) Now() Time { return Time{Sec: c.sec, Msec: c.msec} }

// TicksPerMillisecond returns the configured resolution.
func (c *Clock) TicksPerMillisecond() uint64 { return c.ticksPerMs }

// Deadline computes the absolute tick at which a sleep of d ticks from
// now would fire, along with whether the addition wrapped past the
// counter's maximum value — the overflow case spec.md §4.5 requires
// delay-queue placement to account for.
func (c *Clock) Deadline(d uint64) (target uint64, overflowed bool) {
	target = c.ticks + d
	overflowed = target < c.ticks
	return target, overflowed
}

// Elapsed reports whether the given absolute tick has passed, using
// unsigned comparison against the current counter as spec.md's
// overflow arithmetic requires (target < now triggers the overflow
// path rather than this method).
func (c *Clock) Elapsed(target uint64) bool {
	return target <= c.ticks
}

// SetTicksForTest forces the tick counter to an arbitrary value. It
// exists solely so tests can exercise the counter-wrap scenario (§8
// S6) without iterating Advance 2^64 times; production code has no
// reason to ever call it.
func (c *Clock) SetTicksForTest(ticks uint64) {
	c.ticks = ticks
	c.everAdvanced = true
}
