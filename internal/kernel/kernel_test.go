package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsNilBeforeSet(t *testing.T) {
	mu.Lock()
	sch = nil
	mu.Unlock()
	assert.Nil(t, Get())
}

func TestSyscallsPanicBeforeStart(t *testing.T) {
	mu.Lock()
	sch = nil
	mu.Unlock()
	assert.PanicsWithValue(t, "rtos: kernel syscall invoked before StartScheduler", func() {
		Yield()
	})
}
