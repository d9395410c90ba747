//go:build linux

package linuxhw

import (
	"sync"
	"syscall"
	"time"

	"github.com/pawelgaczynski/giouring"
)

// TickSource drives SystemTick off a recurring io_uring timeout
// instead of a hardware timer interrupt or a time.Ticker. It is the
// real-host analogue of sim.Port's StartTicker: on an actual
// microcontroller port the tick comes from a SysTick-style peripheral;
// here, an IORING_OP_TIMEOUT submission that keeps re-arming itself is
// the nearest thing a userspace process has to an interrupt source
// with sub-millisecond latency and no busy-polling.
type TickSource struct {
	ring *giouring.Ring

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewTickSource creates an io_uring instance sized for a single
// always-in-flight timeout submission.
func NewTickSource() (*TickSource, error) {
	ring, err := giouring.CreateRing(8)
	if err != nil {
		return nil, err
	}
	return &TickSource{
		ring:   ring,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start submits a repeating timeout of period and calls onTick once
// per expiry until Stop is called. Runs on its own goroutine because
// waiting on the completion queue blocks.
func (ts *TickSource) Start(period time.Duration, onTick func()) {
	go ts.loop(period, onTick)
}

func (ts *TickSource) loop(period time.Duration, onTick func()) {
	defer close(ts.doneCh)

	spec := syscall.NsecToTimespec(period.Nanoseconds())
	ts64 := giouring.Timespec{Sec: int64(spec.Sec), Nsec: int64(spec.Nsec)}

	for {
		select {
		case <-ts.stopCh:
			return
		default:
		}

		sqe := ts.ring.GetSQE()
		if sqe == nil {
			continue
		}
		// IORING_TIMEOUT_ETIME_SUCCESS: the normal "timer expired" case
		// reports success rather than -ETIME, since here the timeout
		// firing is the intended event, not an error condition.
		sqe.PrepareTimeout(&ts64, 0, giouring.IoringTimeoutEtimeSuccess)

		if _, err := ts.ring.Submit(); err != nil {
			return
		}

		var cqe *giouring.CompletionQueueEvent
		err := ts.ring.WaitCQE(&cqe)
		if err != nil {
			return
		}
		ts.ring.SeenCQE(cqe)

		select {
		case <-ts.stopCh:
			return
		default:
			onTick()
		}
	}
}

// Stop halts the tick loop and releases the ring. Blocks until the
// loop goroutine has exited.
func (ts *TickSource) Stop() {
	ts.mu.Lock()
	if ts.stopped {
		ts.mu.Unlock()
		return
	}
	ts.stopped = true
	close(ts.stopCh)
	ts.mu.Unlock()

	<-ts.doneCh
	ts.ring.QueueExit()
}
