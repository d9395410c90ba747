// Package kernel holds the one process-wide scheduler instance and the
// syscall entry points built on it. spec.md §9 describes the kernel's
// state — current_task, the ready queues, the clock — as "process-wide
// state with init/teardown... encapsulate behind module-private
// accessors." This package is that encapsulation: both the public
// rtos package and the public ksync/ktime packages call through here
// instead of each holding their own reference, so there is exactly one
// scheduler no matter how many packages need to reach it.
package kernel

import (
	"sync"

	"github.com/behrlich/go-rtos/internal/clock"
	"github.com/behrlich/go-rtos/internal/metrics"
	"github.com/behrlich/go-rtos/internal/sched"
	"github.com/behrlich/go-rtos/internal/task"
)

var (
	mu  sync.RWMutex
	sch *sched.Scheduler
)

// Set installs the process-wide scheduler. Called exactly once, by
// rtos.Init, before any task or syscall can run.
func Set(s *sched.Scheduler) {
	mu.Lock()
	defer mu.Unlock()
	sch = s
}

// Get returns the installed scheduler, or nil if the kernel has not
// started yet. Callers that require a running kernel should prefer the
// syscall wrappers below, which panic with a clear message instead of
// a nil-pointer dereference when called too early.
func Get() *sched.Scheduler {
	mu.RLock()
	defer mu.RUnlock()
	return sch
}

func get() *sched.Scheduler {
	s := Get()
	if s == nil {
		panic("rtos: kernel syscall invoked before StartScheduler")
	}
	return s
}

// Yield requests a voluntary reschedule.
func Yield() { get().Yield() }

// Sleep blocks the current task until Wake(wchan).
func Sleep(wchan uint64) { get().Sleep(wchan) }

// SleepFor blocks until Wake(wchan) or d ticks elapse.
func SleepFor(wchan uint64, d uint64) { get().SleepFor(wchan, d) }

// Wake moves every task blocked on wchan back to ready.
func Wake(wchan uint64) { get().Wake(wchan) }

// SystemTick advances the clock and performs wakeup/preemption.
func SystemTick() { get().SystemTick() }

// Ticks returns the raw monotonic tick counter.
func Ticks() uint64 { return get().Ticks() }

// Now returns the derived (seconds, milliseconds) wall-clock pair.
func Now() clock.Time { return get().Now() }

// SetResolution configures ticks-per-millisecond; must be called
// before the scheduler's first tick.
func SetResolution(ticksPerMs uint64) { get().SetResolution(ticksPerMs) }

// BeginCritical and EndCritical expose the scheduler's critical
// section primitives to ksync.
func BeginCritical() uint32   { return get().BeginCritical() }
func EndCritical(mask uint32) { get().EndCritical(mask) }

// RecordMutexContend forwards a failed CAS observation from ksync.Mutex.
func RecordMutexContend() { get().RecordMutexContend() }

// MetricsSnapshot returns a point-in-time counters snapshot.
func MetricsSnapshot() metrics.Snapshot { return get().Metrics() }

// InitializeStack plants a new task's initial frame via the bound port,
// for rtos.NewTask.
func InitializeStack(top uintptr, entry task.EntryFunc, args *task.Args) uintptr {
	return get().Port().InitializeStack(top, entry, args)
}

// AddReadyTask admits a newly constructed task into the scheduler.
func AddReadyTask(t *task.Record) { get().AddReadyTask(t) }

// Fault escalates a fatal kernel violation to the installed
// scheduler's port, per spec.md §7 — no recovery, no return.
func Fault(reason string) { get().Fault(reason) }

// Start installs the highest-priority ready task and jumps into it.
// Never returns.
func Start() { get().Start() }
