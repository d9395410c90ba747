package ksync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/go-rtos/internal/constants"
	"github.com/behrlich/go-rtos/internal/heap"
	"github.com/behrlich/go-rtos/internal/kernel"
	"github.com/behrlich/go-rtos/internal/port/sim"
	"github.com/behrlich/go-rtos/internal/sched"
	"github.com/behrlich/go-rtos/internal/task"
	"github.com/behrlich/go-rtos/ksync"
)

func bootKernel(t *testing.T) heap.Allocator {
	t.Helper()
	p := sim.New()
	s := sched.New(p, nil, nil, nil)
	p.Bind(s)
	kernel.Set(s)

	alloc := heap.New(1 << 16)
	idle, err := task.New(alloc, constants.DefaultIdleStackDepth, "idle", task.Idle)
	require.NoError(t, err)
	idle.Entry = func(args *task.Args) {
		for {
			kernel.Yield()
		}
	}
	s.AddReadyTask(idle)
	go s.Start()
	return alloc
}

func TestMutexMutualExclusion(t *testing.T) {
	alloc := bootKernel(t)

	m := &ksync.Mutex[uint32]{}
	const iterations = 10000
	done := make(chan struct{}, 2)

	worker := func(args *task.Args) {
		for i := 0; i < iterations; i++ {
			g := m.Lock()
			*g.Deref()++
			g.Unlock()
		}
		done <- struct{}{}
		for {
			kernel.Sleep(0)
		}
	}

	for _, name := range []string{"w1", "w2"} {
		r, err := task.New(alloc, 512, name, task.Normal)
		require.NoError(t, err)
		r.Entry = worker
		kernel.Get().AddReadyTask(r)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("workers did not finish")
		}
	}

	g := m.Lock()
	assert.EqualValues(t, 2*iterations, *g.Deref())
	g.Unlock()
}

func TestTryLockFailsWhenHeld(t *testing.T) {
	bootKernel(t)
	m := &ksync.Mutex[int]{}
	g, ok := m.TryLock()
	require.True(t, ok)

	_, ok2 := m.TryLock()
	assert.False(t, ok2)

	g.Unlock()
	g3, ok3 := m.TryLock()
	assert.True(t, ok3)
	g3.Unlock()
}

func TestCriticalSectionEndTwicePanics(t *testing.T) {
	bootKernel(t)
	cs := ksync.Begin()
	cs.End()
	assert.Panics(t, func() { cs.End() })
}
