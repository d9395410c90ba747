package rtos

import (
	"errors"
	"fmt"

	"github.com/behrlich/go-rtos/internal/heap"
	"github.com/behrlich/go-rtos/internal/kernel"
	"github.com/behrlich/go-rtos/internal/task"
)

// Priority is a scheduling priority level; lower numeric value is
// higher priority. The idle priority is intentionally not exposed here
// (spec.md §6: "the idle priority is private").
type Priority = task.Priority

const (
	Critical = task.Critical
	Normal   = task.Normal
	Low      = task.Low
)

// State is a task's scheduling state.
type State = task.State

const (
	Embryo    = task.Embryo
	Ready     = task.Ready
	Running   = task.Running
	Blocked   = task.Blocked
	Suspended = task.Suspended
)

// EntryFunc is a task's entry point.
type EntryFunc = task.EntryFunc

// Args is an immutable bag of machine words passed to a task's entry
// function.
type Args = task.Args

// ArgsBuilder accumulates words into an Args up to a fixed capacity
// declared at construction; adding past that capacity is fatal, per
// spec.md §7's builder-misuse category.
type ArgsBuilder = task.ArgsBuilder

// NewArgsBuilder returns a builder with room for cap words.
func NewArgsBuilder(cap int) *ArgsBuilder { return task.NewArgsBuilder(cap) }

// EmptyArgs returns the empty Args value.
func EmptyArgs() *Args { return task.Empty() }

// Handle is the only way application code touches a task after
// creation: TID, Name, Priority, State, and StackSize, each failing
// with ErrInvalidHandle once the task has been destroyed instead of
// panicking or reading freed memory, and Destroy, which returns true
// on its first call and false on every later one.
type Handle = task.Handle

// NewTask allocates a stack, plants entry's initial frame via the
// bound port, and admits the task into the scheduler's ready queue at
// priority prio. Must be called after Init and before, or from within,
// a running task — never before Init.
func NewTask(entry EntryFunc, args *Args, stackDepth int, prio Priority, name string) (Handle, error) {
	initMu.Lock()
	alloc := allocator
	initMu.Unlock()
	if alloc == nil {
		return Handle{}, NewConfigError("NewTask", "rtos.Init must be called before NewTask", nil)
	}

	r, err := task.New(alloc, stackDepth, name, prio)
	if err != nil {
		if errors.Is(err, heap.ErrOutOfMemory) {
			// spec.md §7: out-of-memory at task creation is a fatal
			// kernel violation, not a recoverable configuration error —
			// the stack-depth-below-minimum case above is the only
			// task.New failure that stays a CodeInvalidConfig.
			kernel.Fault(fmt.Sprintf("rtos: NewTask(%q): %v", name, err))
		}
		return Handle{}, NewConfigError("NewTask", "failed to create task", err)
	}

	r.Entry = entry
	if args == nil {
		args = EmptyArgs()
	}
	r.Args = args
	r.SP = kernel.InitializeStack(r.StackTop(), r.Entry, r.Args)
	kernel.AddReadyTask(r)

	return task.NewHandle(r), nil
}
