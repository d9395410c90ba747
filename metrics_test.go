package rtos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsReflectsTaskLifecycle(t *testing.T) {
	resetForTest(t)
	require.NoError(t, Init(testPortOption()))

	before := Metrics()

	ready := make(chan struct{})
	h, err := NewTask(func(args *Args) {
		close(ready)
		for {
			Yield()
		}
	}, nil, 512, Normal, "counted")
	require.NoError(t, err)

	go StartScheduler()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	_, err = h.Destroy()
	require.NoError(t, err)

	// Give the scheduler a moment to reap the destroyed task on its
	// next reschedule.
	time.Sleep(10 * time.Millisecond)

	after := Metrics()
	assert.Greater(t, after.TasksCreated, before.TasksCreated)
	assert.GreaterOrEqual(t, after.ContextSwitches, before.ContextSwitches)
}
