package rtos

import (
	"github.com/behrlich/go-rtos/internal/clock"
	"github.com/behrlich/go-rtos/internal/kernel"
)

// FOREVER_CHAN is the reserved wait-channel value meaning "never woken
// except by time elapsing", per spec.md §6. Named in the spec's
// SCREAMING_SNAKE_CASE because it mirrors a literal kernel constant, not
// a Go idiom choice.
const FOREVER_CHAN = ForeverChan

// Yield performs a voluntary reschedule: the calling task stays Ready
// and moves to the tail of its priority's queue. Never fails; returns
// when this task is selected again.
func Yield() { kernel.Yield() }

// Sleep blocks the calling task until Wake(wchan) is called.
func Sleep(wchan uint64) { kernel.Sleep(wchan) }

// SleepFor blocks the calling task until Wake(wchan) or, if wchan is
// FOREVER_CHAN, until d ticks elapse, whichever comes first. d == 0
// with wchan == FOREVER_CHAN is equivalent to a yield-with-block: the
// task becomes ready again on the next tick.
func SleepFor(wchan uint64, d uint64) { kernel.SleepFor(wchan, d) }

// Wake moves every task blocked on wchan back to its priority's ready
// queue. A no-op, not an error, if no task is waiting.
func Wake(wchan uint64) { kernel.Wake(wchan) }

// SystemTick advances the tick counter and performs the wakeup and
// preemption check described in spec.md §4.5. Must be called from the
// tick driver (kernel/ISR context, per Port.InKernelMode); calling it
// from a task is a fatal mode violation.
func SystemTick() { kernel.SystemTick() }

// GetTick returns the raw monotonic tick counter.
func GetTick() uint64 { return kernel.Ticks() }

// Now returns the derived (seconds, milliseconds) wall-clock pair.
func Now() clock.Time { return kernel.Now() }
