package rtos

import "github.com/behrlich/go-rtos/internal/port/sim"

// TestPort is a goroutine-backed Port implementation: every task is a
// real goroutine parked on a private channel, and there is no
// hardware timer, so time only advances when Tick is called or
// StartTicker is driving it off a time.Ticker. It is the default port
// when Init is called without WithPort, and is exported here so
// application test suites can drive the same kernel deterministically
// without reaching into internal/.
type TestPort = sim.Port

// NewTestPort returns a fresh TestPort. Useful for tests that want
// direct access to Tick (deterministic, manual time advance) or
// StartTicker (wall-clock-driven, for demos) instead of the one Init
// creates internally when no WithPort option is given.
func NewTestPort() *TestPort {
	return sim.New()
}
