// Package sim implements internal/port.Port on top of goroutines and
// channels, standing in for the assembly context-switch routine and
// interrupt controller a real microcontroller port would supply.
// spec.md §9 explicitly allows this: "a portable implementation may
// include a test-only port using setjmp-style user-context or threads
// for running the core logic off-target."
//
// Exactly one task goroutine is ever runnable at a time — the rest sit
// parked on a per-task channel — the same single-active-waiter
// discipline alphadose/zenq's ThreadParker uses to avoid a thundering
// herd, adapted here to hand off "who holds the CPU" instead of "who
// gets the next queued value." Unlike ThreadParker, sim does not reach
// into the Go runtime's internals (no //go:linkname); a task in this
// package blocks on an ordinary channel receive, which is the
// idiomatic and supported way to park a goroutine.
package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/behrlich/go-rtos/internal/sched"
	"github.com/behrlich/go-rtos/internal/task"
)

// isrOwner is the critical-section owner id used while a tick is being
// delivered, distinct from any real task id (task ids start at 1).
const isrOwner = ^uint64(0)

// bootOwner is the critical-section owner id used before any task has
// ever run, i.e. while Scheduler.Start is still on the bootstrap
// goroutine.
const bootOwner = uint64(0)

type slot struct {
	resume  chan struct{}
	started bool
}

// Port is a goroutine-backed simulated port. The zero value is not
// usable; construct with New.
type Port struct {
	sched *sched.Scheduler

	mu    sync.Mutex
	slots map[uint64]*slot

	runningTID atomic.Uint64
	inISR      atomic.Bool

	critMu    sync.Mutex
	critState sync.Mutex // guards critOwner/critDepth below, distinct from critMu itself
	critOwner uint64
	critDepth int

	live sync.WaitGroup

	stopTicker chan struct{}
}

// New returns a Port with no scheduler bound yet. Call Bind before
// starting the scheduler.
func New() *Port {
	return &Port{slots: make(map[uint64]*slot)}
}

// Bind associates the port with the scheduler it drives. Scheduler
// construction takes a Port, so the two are wired together in two
// steps: p := sim.New(); s := sched.New(p, ...); p.Bind(s).
func (p *Port) Bind(s *sched.Scheduler) {
	p.sched = s
}

func (p *Port) getSlot(tid uint64) *slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[tid]
	if !ok {
		s = &slot{resume: make(chan struct{}, 1)}
		p.slots[tid] = s
	}
	return s
}

// InitializeStack is a no-op in the simulated port: there is no real
// machine frame to plant because a task's "stack" is a parked
// goroutine's own Go call stack. It returns top unchanged so callers
// still get a non-zero saved SP to satisfy task.Record's invariants.
func (p *Port) InitializeStack(top uintptr, entry task.EntryFunc, args *task.Args) uintptr {
	return top
}

// activate ensures t's goroutine exists (spawning it on first use) and
// signals it to run, installing t as the owner of the CPU.
func (p *Port) activate(t *task.Record) {
	s := p.getSlot(t.TID)
	p.mu.Lock()
	first := !s.started
	s.started = true
	p.mu.Unlock()

	if first {
		p.live.Add(1)
		go p.runTask(t, s)
	}
	p.runningTID.Store(t.TID)
	s.resume <- struct{}{}
}

// runTask is the goroutine body backing a single task record. It
// blocks until first activated, runs the task's entry function exactly
// once, and faults if the entry function ever returns — spec.md §4.3's
// "return from entry traps into the exit-error routine" requirement.
func (p *Port) runTask(t *task.Record, s *slot) {
	defer p.live.Done()
	<-s.resume
	t.Entry(t.Args)
	p.Fault(fmt.Sprintf("port/sim: task %q (tid=%d) returned from its entry function", t.Name, t.TID))
}

// StartFirstTask activates the first task and parks the bootstrap
// goroutine forever, matching the real port's "never returns".
func (p *Port) StartFirstTask(current *task.Record) {
	p.activate(current)
	select {}
}

// YieldCPU hands the CPU to whatever the scheduler has already
// installed as current (the caller's own reschedule already ran by
// the time YieldCPU is invoked) and parks the caller until it is
// selected again. If the scheduler reselected the same task — the
// only ready task at its level yielding back to itself — this is a
// no-op: the calling goroutine simply keeps running.
func (p *Port) YieldCPU() {
	next := p.sched.Current()
	me := p.runningTID.Load()
	if next == nil || next.TID == me {
		return
	}
	mySlot := p.getSlot(me)
	p.activate(next)
	<-mySlot.resume
	p.runningTID.Store(me)
}

// InKernelMode reports whether the caller is the tick driver rather
// than a task goroutine.
func (p *Port) InKernelMode() bool {
	return p.inISR.Load()
}

// ownerID identifies who is asking to enter a critical section: the
// tick driver, the bootstrap goroutine, or a specific task.
func (p *Port) ownerID() uint64 {
	if p.inISR.Load() {
		return isrOwner
	}
	if tid := p.runningTID.Load(); tid != 0 {
		return tid
	}
	return bootOwner
}

// BeginCritical acquires the port's single critical-section mutex,
// reentrantly for the same owner — mirroring a real interrupt mask,
// where disabling interrupts twice in a row from the same context is
// harmless and the second begin/end pair is a no-op with respect to
// the actual hardware state. The returned mask is the pre-call nesting
// depth; EndCritical does not read it.
func (p *Port) BeginCritical() uint32 {
	me := p.ownerID()

	p.critState.Lock()
	if p.critDepth > 0 && p.critOwner == me {
		depth := p.critDepth
		p.critDepth++
		p.critState.Unlock()
		return uint32(depth)
	}
	p.critState.Unlock()

	p.critMu.Lock()
	p.critState.Lock()
	p.critOwner = me
	p.critDepth = 1
	p.critState.Unlock()
	return 0
}

// EndCritical releases one level of nesting, and the underlying mutex
// once the outermost BeginCritical unwinds. It panics if no critical
// section is held.
func (p *Port) EndCritical(mask uint32) {
	p.critState.Lock()
	defer p.critState.Unlock()
	if p.critDepth == 0 {
		panic("port/sim: EndCritical called without a matching BeginCritical")
	}
	p.critDepth--
	if p.critDepth == 0 {
		p.critOwner = 0
		p.critMu.Unlock()
	}
}

// Fault halts the simulated kernel. There is no recovery path per
// spec.md §7; panicking is this port's analogue of the real hardware's
// debug-trap loop — it stops the offending goroutine from making any
// further progress and surfaces the violation loudly instead of
// silently corrupting kernel state.
func (p *Port) Fault(reason string) {
	panic("rtos fault: " + reason)
}

// Tick delivers one system-tick interrupt to the bound scheduler,
// marking the call as kernel-mode for the duration so
// Scheduler.SystemTick's InKernelMode assertion passes.
func (p *Port) Tick() {
	p.inISR.Store(true)
	defer p.inISR.Store(false)
	p.sched.SystemTick()
}

// StartTicker runs Tick on a fixed wall-clock interval until the
// returned stop function is called, for callers that want real-time
// behavior rather than hand-driven ticks in a test. Only one ticker
// may run at a time per Port.
func (p *Port) StartTicker(interval time.Duration) (stop func()) {
	stopCh := make(chan struct{})
	p.stopTicker = stopCh
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.Tick()
			case <-stopCh:
				return
			}
		}
	}()
	return func() { close(stopCh) }
}
