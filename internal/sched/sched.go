// Package sched implements the scheduler core: priority-indexed ready
// queues, the delay and overflow-delay queues, next-task selection,
// and the syscalls built on top of them. It is grounded on the
// original core's scheduler module (ready queue array, delay/overflow
// queues, the six-step context-switch procedure in §4.4 of the
// specification this kernel follows) and on the teacher's package
// layout style: one package owning a single global piece of state,
// guarded throughout by a critical section rather than ad hoc locks.
//
// sched is deliberately the only package that knows about both
// internal/task and internal/port; internal/queue and internal/clock
// stay ignorant of scheduling policy so they can be tested in
// isolation.
package sched

import (
	"fmt"

	"github.com/behrlich/go-rtos/internal/clock"
	"github.com/behrlich/go-rtos/internal/constants"
	"github.com/behrlich/go-rtos/internal/logging"
	"github.com/behrlich/go-rtos/internal/metrics"
	"github.com/behrlich/go-rtos/internal/port"
	"github.com/behrlich/go-rtos/internal/queue"
	"github.com/behrlich/go-rtos/internal/task"
)

// Scheduler owns every piece of process-wide kernel state: the
// priority ready queues, the two delay queues, the currently running
// task, and the tick clock. Exactly one Scheduler exists per running
// kernel; internal/kernel holds the package-level singleton that
// applications reach through syscalls.
type Scheduler struct {
	port port.Port
	log  *logging.Logger
	obs  metrics.Observer
	met  *metrics.Metrics

	ready [constants.NumPriorities]queue.FIFO[task.Record, *task.Record]
	delay queue.FIFO[task.Record, *task.Record]
	odly  queue.FIFO[task.Record, *task.Record] // overflow-delay queue

	current *task.Record
	clock   *clock.Clock

	started bool
}

// New constructs a Scheduler bound to the given port. The scheduler is
// inert until Start is called.
func New(p port.Port, log *logging.Logger, obs metrics.Observer, met *metrics.Metrics) *Scheduler {
	if log == nil {
		log = logging.Silent()
	}
	if obs == nil {
		obs = metrics.NopObserver
	}
	if met == nil {
		met = metrics.NewMetrics()
	}
	return &Scheduler{
		port:  p,
		log:   log,
		obs:   obs,
		met:   met,
		clock: clock.New(),
	}
}

// SetResolution configures ticks-per-millisecond. Must be called
// before Start (spec.md §9's resolved open question: calling it after
// the first tick is a configuration error, surfaced here as a fault
// rather than silently ignored, since the kernel's entire delay-queue
// arithmetic would otherwise be racing a resolution change).
func (s *Scheduler) SetResolution(ticksPerMs uint64) {
	if !s.clock.SetResolution(ticksPerMs) {
		s.Fault("sched: SetResolution called after first tick or with zero ticksPerMs")
	}
}

// enqueueReady places t at the tail of its priority's ready queue and
// marks it Ready. Caller must hold the critical section.
func (s *Scheduler) enqueueReady(t *task.Record) {
	t.State = task.Ready
	s.ready[t.Priority].Enqueue(t)
}

// AddReadyTask admits a brand-new task (state Embryo) into the
// scheduler. Called once per task, right after task.New and
// port.InitializeStack have prepared its stack.
func (s *Scheduler) AddReadyTask(t *task.Record) {
	mask := s.port.BeginCritical()
	s.enqueueReady(t)
	s.met.RecordTaskCreated()
	s.port.EndCritical(mask)
	s.log.Debug("task created", "name", t.Name, "tid", t.TID, "priority", t.Priority)
}

// Current returns the currently running task record, or nil if called
// before the scheduler has started.
func (s *Scheduler) Current() *task.Record {
	return s.current
}

// Start installs the highest-priority ready task as current and jumps
// into it via the port. Never returns.
func (s *Scheduler) Start() {
	mask := s.port.BeginCritical()
	next := s.selectNextLocked()
	s.current = next
	next.State = task.Running
	s.started = true
	s.port.EndCritical(mask)

	s.log.Info("scheduler starting", "task", next.Name, "tid", next.TID)
	s.port.StartFirstTask(next)
}

// selectNextLocked implements steps 6 of spec.md §4.4's selection
// procedure: scan priorities highest to lowest, dropping any
// destroyed records encountered, and return the first live one. The
// idle task occupies the lowest (task.Idle) queue and is always
// present, so this never returns nil once the kernel has an idle task
// installed.
func (s *Scheduler) selectNextLocked() *task.Record {
	for p := 0; p < constants.NumPriorities; p++ {
		for {
			t, ok := s.ready[p].Dequeue()
			if !ok {
				break
			}
			if t.MarkedForDestroy() {
				s.met.RecordTaskDestroyed()
				s.log.Debug("task destroyed", "name", t.Name, "tid", t.TID)
				continue
			}
			return t
		}
	}
	s.Fault("sched: no ready task found, including idle — idle task missing")
	return nil
}

// reschedule implements the full context-switch procedure of spec.md
// §4.4, steps 1–6. It must be called with interrupts already disabled
// (the port's pended-switch handler is expected to call BeginCritical
// itself before invoking this, or to run with interrupts already
// masked); reschedule does not itself acquire the critical section so
// that callers already holding one do not double-nest needlessly, but
// every caller in this package does wrap it.
func (s *Scheduler) reschedule() {
	out := s.current
	s.current = nil

	if out != nil {
		if out.MarkedForDestroy() {
			s.met.RecordTaskDestroyed()
			s.log.Debug("task destroyed", "name", out.Name, "tid", out.TID)
		} else if out.IsStackOverflowed() {
			s.Fault(fmt.Sprintf("sched: stack overflow in task %q (tid=%d)", out.Name, out.TID))
			return
		} else if out.State == task.Blocked {
			if out.Overflowed {
				s.odly.Enqueue(out)
			} else {
				s.delay.Enqueue(out)
			}
		} else {
			s.enqueueReady(out)
		}
	}

	next := s.selectNextLocked()
	next.State = task.Running
	s.current = next
	s.met.RecordContextSwitch(0)
	s.obs.ObserveContextSwitch(0)
	if out != nil {
		s.log.Debug("context switch", "from", out.Name, "fromTid", out.TID, "to", next.Name, "toTid", next.TID)
	} else {
		s.log.Debug("context switch", "to", next.Name, "toTid", next.TID)
	}
}

// Fault records the violation before handing off to the port, so a
// kernel that halts in port.Fault's debug-trap loop still leaves an
// accurate metrics snapshot and Observer event behind it. Exported so
// callers outside the scheduler (task creation's out-of-memory path)
// can escalate a fatal kernel violation through the same route the
// scheduler's own internal checks use, rather than inventing a second
// one.
func (s *Scheduler) Fault(reason string) {
	s.log.Error(reason)
	s.met.RecordFault()
	s.obs.ObserveFault(reason)
	s.port.Fault(reason)
}

// Yield performs a voluntary reschedule: the calling task stays Ready
// and is placed at the tail of its priority's queue by reschedule.
func (s *Scheduler) Yield() {
	mask := s.port.BeginCritical()
	s.reschedule()
	s.port.EndCritical(mask)
	s.port.YieldCPU()
}

// blockCurrent marks the current task Blocked with the given wait
// channel and deadline/overflow pair, then reschedules away from it.
// Caller must hold the critical section already held by Sleep/SleepFor.
func (s *Scheduler) blockCurrent(wchan uint64, deadline uint64, overflowed bool) {
	cur := s.current
	if cur == nil {
		s.Fault("sched: blockCurrent called with no current task")
		return
	}
	cur.State = task.Blocked
	cur.WChan = wchan
	cur.Deadline = deadline
	cur.Overflowed = overflowed
	s.reschedule()
}

// Sleep blocks the current task until Wake(wchan) is called.
func (s *Scheduler) Sleep(wchan uint64) {
	mask := s.port.BeginCritical()
	s.blockCurrent(wchan, 0, false)
	s.port.EndCritical(mask)
	s.port.YieldCPU()
}

// SleepFor blocks the current task until Wake(wchan) or, if wchan is
// constants.ForeverChan, until d ticks elapse, whichever comes first.
// d == 0 with wchan == ForeverChan is a yield-with-block, per spec.md
// §4.6: the task becomes ready again on the next tick.
func (s *Scheduler) SleepFor(wchan uint64, d uint64) {
	mask := s.port.BeginCritical()
	target, overflowed := s.clock.Deadline(d)
	s.blockCurrent(wchan, target, overflowed)
	s.port.EndCritical(mask)
	s.port.YieldCPU()
}

// Wake moves every task blocked on wchan (in either delay queue) back
// to its priority's ready queue. No-op if none are waiting — a benign
// condition per spec.md §7, not an error.
func (s *Scheduler) Wake(wchan uint64) {
	mask := s.port.BeginCritical()
	woke := s.wakeLocked(wchan)
	needSwitch := woke && s.higherOrEqualReadyLocked()
	s.port.EndCritical(mask)
	s.obs.ObserveWake(woke)
	s.met.RecordWake(woke)
	if needSwitch {
		s.port.YieldCPU()
	}
}

func (s *Scheduler) wakeLocked(wchan uint64) bool {
	matched := false
	pred := func(t *task.Record) bool { return t.WChan == wchan }

	hit := s.delay.Remove(pred)
	hit.Drain(func(t *task.Record) {
		matched = true
		t.WChan = 0
		t.Deadline = 0
		s.enqueueReady(t)
	})

	hit2 := s.odly.Remove(pred)
	hit2.Drain(func(t *task.Record) {
		matched = true
		t.WChan = 0
		t.Deadline = 0
		t.Overflowed = false
		s.enqueueReady(t)
	})

	return matched
}

// SystemTick advances the clock and performs the wakeup + preemption
// scan described in spec.md §4.5. Must be called from kernel (ISR)
// context; calling it from a task is a fatal mode violation.
//
// The preemption check only *requests* a switch via port.YieldCPU, per
// §6's "returns normally; the switch happens asynchronously" — called
// from the tick driver's own goroutine it cannot force the running
// task's goroutine to stop immediately, so in a goroutine-backed port
// the request takes effect at that task's own next syscall, same as a
// pended exception takes effect at the next instruction boundary on
// real hardware.
func (s *Scheduler) SystemTick() {
	if !s.port.InKernelMode() {
		s.Fault("sched: SystemTick called outside kernel mode")
		return
	}

	mask := s.port.BeginCritical()
	wrapped := s.clock.Advance()
	now := s.clock.Ticks()

	s.wakeDueLocked(now)

	if wrapped {
		s.promoteOverflowLocked()
		s.met.RecordTickWrap()
		s.obs.ObserveTickWrap()
	}

	needSwitch := s.higherOrEqualReadyLocked()
	s.port.EndCritical(mask)

	if needSwitch {
		s.port.YieldCPU()
	}
}

// wakeDueLocked moves every pure time-sleeper (wchan == ForeverChan)
// in the delay queue whose deadline has elapsed back to ready.
// Overflowed sleepers are untouched here; they can only become
// eligible once the counter itself wraps (see promoteOverflowLocked).
func (s *Scheduler) wakeDueLocked(now uint64) {
	pred := func(t *task.Record) bool {
		return t.WChan == constants.ForeverChan && t.Deadline <= now
	}
	due := s.delay.Remove(pred)
	due.Drain(func(t *task.Record) {
		t.WChan = 0
		t.Deadline = 0
		s.enqueueReady(t)
	})
}

// promoteOverflowLocked clears the overflow flag on every task in the
// overflow-delay queue and transfers the whole queue into the delay
// queue, per spec.md §4.5's wrap handling.
func (s *Scheduler) promoteOverflowLocked() {
	transferred := s.odly.RemoveAll()
	transferred.Each(func(t *task.Record) {
		t.Overflowed = false
	})
	s.delay.Append(&transferred)
}

// higherOrEqualReadyLocked reports whether any ready queue at the
// current task's priority or higher is non-empty — the preemption
// trigger of spec.md §4.5's final bullet.
func (s *Scheduler) higherOrEqualReadyLocked() bool {
	if s.current == nil {
		return false
	}
	for p := 0; p <= int(s.current.Priority); p++ {
		if !s.ready[p].IsEmpty() {
			return true
		}
	}
	return false
}

// Now returns the current wall-clock snapshot under a critical
// section, matching spec.md §5's "any composite read of the time
// value" requirement.
func (s *Scheduler) Now() clock.Time {
	mask := s.port.BeginCritical()
	now := s.clock.Now()
	s.port.EndCritical(mask)
	return now
}

// Ticks returns the raw tick counter under a critical section.
func (s *Scheduler) Ticks() uint64 {
	mask := s.port.BeginCritical()
	t := s.clock.Ticks()
	s.port.EndCritical(mask)
	return t
}

// TicksPerMillisecond returns the configured clock resolution.
func (s *Scheduler) TicksPerMillisecond() uint64 {
	return s.clock.TicksPerMillisecond()
}

// BeginCritical and EndCritical expose the port's masking primitives
// directly, for ksync.CriticalSection and ksync.Mutex to build on.
func (s *Scheduler) BeginCritical() uint32   { return s.port.BeginCritical() }
func (s *Scheduler) EndCritical(mask uint32) { s.port.EndCritical(mask) }

// Port exposes the bound port, for the rtos package's NewTask to plant
// a new task's initial stack frame without the scheduler needing a
// dedicated wrapper method for every Port call a task constructor uses.
func (s *Scheduler) Port() port.Port { return s.port }

// SetTicksForTest forces the tick counter to an arbitrary value under
// the critical section, for exercising the counter-wrap scenario (§8
// S6) without iterating SystemTick 2^64 times.
func (s *Scheduler) SetTicksForTest(ticks uint64) {
	mask := s.port.BeginCritical()
	s.clock.SetTicksForTest(ticks)
	s.port.EndCritical(mask)
}

// RecordMutexContend lets ksync.Mutex report a failed first CAS
// attempt without reaching into the scheduler's metrics field itself.
func (s *Scheduler) RecordMutexContend() { s.met.RecordMutexContend() }

// Metrics exposes a point-in-time counters snapshot for diagnostics
// and the rtos package's public Metrics re-export.
func (s *Scheduler) Metrics() metrics.Snapshot { return s.met.Snapshot() }
