package ksync

import (
	"sync/atomic"
	"unsafe"

	"github.com/behrlich/go-rtos/internal/kernel"
)

// Mutex wraps a payload of type T behind a sleep-based lock built on
// an atomic flag and a wait-channel rendezvous, per spec.md §4.7. The
// wait channel is the flag's own address, following the "by
// convention the address of the synchronization object is used"
// rule — so no two Mutex values anywhere in the process ever collide
// on a wait channel value, and no separate id allocator is needed.
//
// The lock is not FIFO and does not implement priority inheritance:
// when multiple sleepers wake on unlock, whichever wins the
// subsequent CAS acquires the lock. Unbounded priority inversion is
// possible and, per spec.md §9, deliberately out of scope.
type Mutex[T any] struct {
	locked  atomic.Bool
	payload T
}

// Guard is the proof-of-ownership returned by Lock and TryLock. Its
// zero value is never returned to callers; Unlock must be called
// exactly once to release.
type Guard[T any] struct {
	m *Mutex[T]
}

func (m *Mutex[T]) wchan() uint64 {
	return uint64(uintptr(unsafe.Pointer(&m.locked)))
}

// Lock acquires the mutex, blocking the current task until it
// succeeds. Spurious wakeups are expected: a waiter retries its own
// CAS after every wake rather than assuming the lock is now free.
func (m *Mutex[T]) Lock() Guard[T] {
	for {
		if m.locked.CompareAndSwap(false, true) {
			return Guard[T]{m: m}
		}
		kernel.RecordMutexContend()
		kernel.Sleep(m.wchan())
	}
}

// TryLock makes a single CAS attempt and never blocks. ok is false if
// the mutex was already held — a benign, expected outcome per
// spec.md §7, not an error.
func (m *Mutex[T]) TryLock() (g Guard[T], ok bool) {
	if m.locked.CompareAndSwap(false, true) {
		return Guard[T]{m: m}, true
	}
	kernel.RecordMutexContend()
	return Guard[T]{}, false
}

// Unlock releases the mutex and wakes any waiters. The release store
// happens-before the wake, per spec.md §5, so a waiter re-attempting
// its CAS after waking always observes the unlocked flag.
func (g Guard[T]) Unlock() {
	g.m.locked.Store(false)
	kernel.Wake(g.m.wchan())
}

// Deref returns a pointer to the guarded payload. Valid only while the
// guard has not been unlocked.
func (g Guard[T]) Deref() *T {
	return &g.m.payload
}
