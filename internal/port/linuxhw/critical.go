//go:build linux

// Package linuxhw is a Linux-hosted Port that wires two pieces of the
// contract to real OS primitives instead of sim's pure-Go stand-ins:
// interrupt masking becomes real signal blocking (golang.org/x/sys/unix),
// and the system tick is driven by an io_uring timeout
// (github.com/pawelgaczynski/giouring) rather than a time.Ticker.
//
// InitializeStack, StartFirstTask, and YieldCPU are not reimplemented
// here: a genuine bare-metal port plants a machine-specific register
// frame and performs the context switch in assembly, which is outside
// what Go can express without cgo and a per-arch .s file neither this
// retrieval pack nor the toolchain-free constraint of this build leaves
// room to validate. Those three methods are inherited by embedding
// sim.Port, whose goroutine-per-task scheme gives the same scheduling
// semantics on any host Linux can run on. Everything that is genuine
// host integration — signal masking, the tick source — is real.
package linuxhw

import (
	"golang.org/x/sys/unix"

	"github.com/behrlich/go-rtos/internal/port/sim"
)

// Port layers real signal masking on top of sim's goroutine-scheduling
// core, rather than in place of it. The embedded *sim.Port supplies
// InitializeStack, StartFirstTask, YieldCPU, InKernelMode, and Fault
// unmodified; BeginCritical/EndCritical are overridden below to call
// through to sim.Port's own mutex-based critical section (still the
// only thing that actually serializes the scheduler's ready/delay/wait
// state across goroutines and OS threads) and additionally mask real
// signals around it.
type Port struct {
	*sim.Port

	// blockSet is the signal set masked for the critical section's
	// duration: SIGALRM and SIGVTALRM, the two signals a timer-driven
	// tick source could plausibly deliver on. Blocking them is this
	// port's equivalent of disabling the hardware tick interrupt.
	blockSet unix.Sigset_t
}

// New returns a linuxhw Port wrapping a fresh sim.Port.
func New() *Port {
	p := &Port{Port: sim.New()}
	p.blockSet = unix.Sigset_t{}
	addSignal(&p.blockSet, unix.SIGALRM)
	addSignal(&p.blockSet, unix.SIGVTALRM)
	return p
}

// addSignal sets the bit for sig in set, matching the layout
// unix.PthreadSigmask expects (a bitmask word per 32 signals on
// linux/amd64's Sigset_t).
func addSignal(set *unix.Sigset_t, sig int) {
	word := (sig - 1) / 32
	bit := uint32((sig - 1) % 32)
	set.Val[word] |= 1 << bit
}

// BeginCritical first acquires the embedded sim.Port's own critical
// section (its critMu/critState bookkeeping), the same mutex every
// other Port caller serializes through — without this, a signal mask
// set on the calling OS thread does nothing to stop a task goroutine
// scheduled onto a *different* OS thread, or TickSource's dedicated
// completion-polling goroutine, from concurrently mutating the
// scheduler's ready/delay/wait state. Real signals are only masked on
// the outermost acquire (sim.Port reports nesting depth 0), matching
// a real interrupt controller where re-disabling an already-disabled
// interrupt line is a no-op.
func (p *Port) BeginCritical() uint32 {
	depth := p.Port.BeginCritical()
	if depth == 0 {
		if err := unix.PthreadSigmask(unix.SIG_BLOCK, &p.blockSet, nil); err != nil {
			p.Fault("linuxhw: PthreadSigmask(SIG_BLOCK) failed: " + err.Error())
		}
	}
	return depth
}

// EndCritical releases the embedded sim.Port's critical section first
// -- mirroring the acquire order in BeginCritical reversed -- and only
// unblocks the real signals once that release reaches the outermost
// level (mask == 0), i.e. the same level at which BeginCritical
// blocked them.
func (p *Port) EndCritical(mask uint32) {
	p.Port.EndCritical(mask)
	if mask == 0 {
		if err := unix.PthreadSigmask(unix.SIG_UNBLOCK, &p.blockSet, nil); err != nil {
			p.Fault("linuxhw: PthreadSigmask(SIG_UNBLOCK) failed: " + err.Error())
		}
	}
}
