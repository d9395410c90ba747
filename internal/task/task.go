// Package task implements the schedulable unit's data model: the task
// record, its stack, its identity and validity cookie, and the
// arguments bag passed to its entry function. Grounded on the original
// core's TaskControl struct (stack pointer first, validity cookie,
// scheduling fields) and on the teacher's structured-error/handle
// style for surfacing use-after-destroy as a value, not a panic.
//
// task deliberately knows nothing about the scheduler or the port: it
// is pure data plus the bookkeeping (cookie, destroy flag) that any
// caller needs regardless of how selection or context switching work.
package task

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/behrlich/go-rtos/internal/constants"
	"github.com/behrlich/go-rtos/internal/heap"
)

// Priority is a scheduling priority level. Lower numeric value means
// higher priority, matching the ready-queue array's indexing.
type Priority int

const (
	Critical Priority = iota
	Normal
	Low
	// idle is intentionally unexported: applications never create tasks
	// at the idle priority, matching spec.md §6 ("the idle priority is
	// private").
	idle
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "Critical"
	case Normal:
		return "Normal"
	case Low:
		return "Low"
	case idle:
		return "Idle"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Idle is exposed read-only so the scheduler package (which does need
// to create the idle task) can reach it without applications being
// able to name it through the public Priority constants.
const Idle = idle

// State is a task's scheduling state.
type State int

const (
	Embryo State = iota
	Ready
	Running
	Blocked
	Suspended
)

func (s State) String() string {
	switch s {
	case Embryo:
		return "Embryo"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Blocked:
		return "Blocked"
	case Suspended:
		return "Suspended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EntryFunc is a task's entry point. It receives the task's Args bag.
type EntryFunc func(args *Args)

var nextTID atomic.Uint64

func fetchNextTID() uint64 {
	return nextTID.Add(1)
}

// Record is a schedulable unit: its own stack, saved machine state, and
// scheduling fields. SP MUST remain the first field — the context
// switch routine in internal/port treats a *Record as equivalent to a
// pointer to its saved stack pointer. Never reorder this struct without
// updating every port.
type Record struct {
	SP uintptr // MUST be first: the ABI invariant the port depends on.

	stack      []byte
	stackBase  uintptr
	stackTop   uintptr
	stackDepth int

	TID      uint64
	Name     string
	Priority Priority
	State    State
	cookie   atomic.Uint32

	Args  *Args
	Entry EntryFunc // the planted entry point; set once at creation, read by the port when a task first runs

	WChan      uint64 // wait channel; constants.ForeverChan means pure time sleep
	Deadline   uint64 // absolute wakeup tick, valid only while Blocked
	Overflowed bool   // true iff Deadline wrapped past the tick counter's max

	destroy atomic.Bool

	next *Record // intrusive queue linkage; owned by whichever queue holds this record
}

// Next implements queue.Linker.
func (r *Record) Next() *Record { return r.next }

// SetNext implements queue.Linker.
func (r *Record) SetNext(n *Record) { r.next = n }

// cookieFor computes the validity cookie for a given tid, matching the
// original core's VALID ⊕ (tid & 0xFF) scheme.
func cookieFor(tid uint64) uint32 {
	return constants.ValidTaskCookie ^ uint32(tid&0xFF)
}

// New allocates a stack of the requested depth from alloc and returns a
// new task record in the Embryo state. The stack pointer is left at the
// top of the region, unplanted — planting the initial machine frame is
// the port's job (internal/port.Port.InitializeStack), since only the
// port knows the target ABI's register layout.
func New(alloc heap.Allocator, depth int, name string, priority Priority) (*Record, error) {
	if depth < constants.MinStackDepth {
		return nil, fmt.Errorf("task: stack depth %d below minimum %d", depth, constants.MinStackDepth)
	}
	stack, err := alloc.Alloc(depth)
	if err != nil {
		return nil, fmt.Errorf("task: %w", err) // wraps heap.ErrOutOfMemory when the region is exhausted
	}

	base := uintptr(0)
	if len(stack) > 0 {
		base = uintptr(unsafe.Pointer(&stack[0]))
	}
	top := base + uintptr(depth)

	tid := fetchNextTID()
	r := &Record{
		SP:         top,
		stack:      stack,
		stackBase:  base,
		stackTop:   top,
		stackDepth: depth,
		TID:        tid,
		Name:       name,
		Priority:   priority,
		State:      Embryo,
	}
	r.cookie.Store(cookieFor(tid))
	return r, nil
}

// StackBase returns the lowest valid address of the task's stack.
func (r *Record) StackBase() uintptr { return r.stackBase }

// StackTop returns the highest address of the task's stack (one past
// the last usable byte, i.e. the initial SP before any frame is
// planted).
func (r *Record) StackTop() uintptr { return r.stackTop }

// StackDepth returns the configured stack size in bytes.
func (r *Record) StackDepth() int { return r.stackDepth }

// IsStackOverflowed reports the cheap approximation spec.md §4.3
// describes: the saved SP has descended at or below the stack base.
// A catastrophic overflow may already have corrupted the record by the
// time this is observed; it is a tripwire, not a guarantee.
func (r *Record) IsStackOverflowed() bool {
	return r.SP <= r.stackBase
}

// MarkDestroy flips the destroy flag and invalidates the cookie
// atomically; the record is reclaimed at its next scheduling
// opportunity. Returns true the first time it is called on a given
// record, false on every call after (destroy idempotence, spec.md §8
// property 6).
func (r *Record) MarkDestroy() bool {
	if !r.destroy.CompareAndSwap(false, true) {
		return false
	}
	r.cookie.Store(constants.InvalidTaskCookie)
	return true
}

// MarkedForDestroy reports whether MarkDestroy has taken effect.
func (r *Record) MarkedForDestroy() bool {
	return r.destroy.Load()
}

// Valid reports whether the record's cookie still matches its tid,
// i.e. it has not been destroyed.
func (r *Record) Valid() bool {
	return r.cookie.Load() == cookieFor(r.TID)
}
