// Package ktime exposes the kernel's monotonic tick clock to
// application code: Now, GetTick, SetResolution, DelayMs, and DelaySec.
// The tick entry point itself is rtos.SystemTick. Named ktime rather than
// time to avoid shadowing the standard library package in application
// imports.
package ktime

import (
	"github.com/behrlich/go-rtos/internal/clock"
	"github.com/behrlich/go-rtos/internal/constants"
	"github.com/behrlich/go-rtos/internal/kernel"
)

// Now returns the derived (seconds, milliseconds) wall-clock pair.
func Now() clock.Time { return kernel.Now() }

// GetTick returns the raw monotonic tick counter.
func GetTick() uint64 { return kernel.Ticks() }

// SetResolution configures ticks-per-millisecond. Must be called
// before the scheduler's first tick; calling it later is a fatal
// configuration error (spec.md §9's resolved open question).
func SetResolution(ticksPerMs uint64) { kernel.SetResolution(ticksPerMs) }

// DelayMs blocks the calling task for approximately ms milliseconds,
// using the configured ticks-per-millisecond resolution.
func DelayMs(ms uint64) {
	ticksPerMs := kernel.Get().TicksPerMillisecond()
	kernel.SleepFor(constants.ForeverChan, ms*ticksPerMs)
}

// DelaySec blocks the calling task for approximately s seconds.
func DelaySec(s uint64) {
	DelayMs(s * 1000)
}
