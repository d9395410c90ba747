//go:build linux

package linuxhw

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestAddSignalSetsExpectedBits(t *testing.T) {
	var set unix.Sigset_t
	addSignal(&set, unix.SIGALRM)
	addSignal(&set, unix.SIGVTALRM)

	assert.NotZero(t, set.Val[0])
	// SIGALRM (14) and SIGVTALRM (26) both land in the first word.
	assert.NotZero(t, set.Val[0]&(1<<uint(unix.SIGALRM-1)))
	assert.NotZero(t, set.Val[0]&(1<<uint(unix.SIGVTALRM-1)))
}

func TestBeginEndCriticalRoundTrips(t *testing.T) {
	p := New()
	mask := p.BeginCritical()
	p.EndCritical(mask)
}

func TestNestedBeginCriticalOnlyMasksSignalsOnce(t *testing.T) {
	p := New()
	outer := p.BeginCritical()
	inner := p.BeginCritical()
	assert.NotEqual(t, outer, inner, "a nested acquire must report a deeper nesting level")
	p.EndCritical(inner)
	p.EndCritical(outer)
}

// TestBeginCriticalSerializesAcrossGoroutines exercises the bug this
// fix closes: BeginCritical/EndCritical must serialize concurrent
// goroutines through sim.Port's own mutex, not merely mask signals on
// whichever OS thread happens to call them.
func TestBeginCriticalSerializesAcrossGoroutines(t *testing.T) {
	p := New()

	var inSection atomic.Int32
	var sawOverlap atomic.Bool
	var wg sync.WaitGroup

	const goroutines = 8
	const iterations = 50
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				mask := p.BeginCritical()
				if inSection.Add(1) > 1 {
					sawOverlap.Store(true)
				}
				time.Sleep(time.Microsecond)
				inSection.Add(-1)
				p.EndCritical(mask)
			}
		}()
	}
	wg.Wait()

	assert.False(t, sawOverlap.Load(), "two goroutines were inside the critical section at once")
}
