// Package spin implements the kernel's busy-wait lock, used internally
// to guard data structures (the synchronized queue wrapper) from
// concurrent access by contexts that must not block — never from an ISR
// with interrupts already disabled on the same data, and never held
// across a call that might sleep.
//
// This is distinct from ksync.Mutex, which sleeps the caller instead of
// spinning and is meant for application-level mutual exclusion.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Mutex is a minimal CAS-based spin lock. The zero value is unlocked.
type Mutex struct {
	locked atomic.Bool
}

// Lock spins until the lock is acquired.
func (m *Mutex) Lock() {
	for !m.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryLock makes a single acquire attempt and never blocks.
func (m *Mutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an already-unlocked Mutex is a
// programming error and is not detected, matching the teacher's
// underlying atomic-flag discipline.
func (m *Mutex) Unlock() {
	m.locked.Store(false)
}
