// Package port declares the platform contract the kernel core is
// written against: stack planting, the bootstrap jump into the first
// task, interrupt masking, and the pend-context-switch signal. The
// core never imports a concrete port; internal/sched takes one through
// this interface so the same scheduling logic runs unmodified on a
// simulated, goroutine-based port (internal/port/sim) or a real
// interrupt-driven one (internal/port/linuxhw).
package port

import "github.com/behrlich/go-rtos/internal/task"

// Port is the platform-specific half of the kernel, grounded on
// spec.md §6's port-layer contract table and on the original core's
// assembly-agnostic split between scheduler and hardware glue.
type Port interface {
	// InitializeStack plants the initial machine frame described in
	// spec.md §4.3 onto the stack running up to top, such that a first
	// "restore" from the returned stack pointer begins executing entry
	// with args as its sole argument, and a return from entry traps
	// into a fatal exit-error routine. Returns the adjusted stack
	// pointer to store as the task's saved SP.
	InitializeStack(top uintptr, entry task.EntryFunc, args *task.Args) uintptr

	// StartFirstTask switches from the bootstrap stack onto the current
	// task's planted stack and resumes it. Never returns.
	StartFirstTask(current *task.Record)

	// YieldCPU requests a context switch at the next safe point. It
	// returns immediately; the switch itself happens asynchronously
	// (on real hardware, via a pended exception; in the simulated port,
	// by handing control to the coordinator goroutine).
	YieldCPU()

	// InKernelMode reports whether the caller is executing on the
	// kernel's own stack rather than a task's stack — used to assert
	// that ISR-only routines such as SystemTick are never called from
	// task context.
	InKernelMode() bool

	// BeginCritical disables interrupts (or the port's equivalent
	// serialization mechanism) and returns the previous mask so nested
	// critical sections restore correctly rather than unconditionally
	// re-enabling.
	BeginCritical() uint32

	// EndCritical restores a mask previously returned by BeginCritical.
	EndCritical(mask uint32)

	// Fault reports a fatal kernel violation (stack overflow, missing
	// current task, wrong execution mode, out-of-memory at task
	// creation). Per spec.md §7 there is no recovery: a real port
	// enters a debug-trap loop; Fault must not return.
	Fault(reason string)
}
