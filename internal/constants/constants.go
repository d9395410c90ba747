// Package constants holds the kernel's build/startup-time configuration.
// Nothing here is discovered at runtime; it is the Go analogue of the
// #define knobs a C/Rust RTOS core would carry.
package constants

import "time"

const (
	// NumPriorities is the number of scheduling priority levels,
	// including the private Idle level used only by the idle task.
	NumPriorities = 4

	// ForeverChan is the reserved wait-channel value meaning "never wake
	// except on time elapsed".
	ForeverChan uint64 = 0

	// ValidTaskCookie is the base value XORed with (tid & 0xFF) to form
	// a task record's validity cookie.
	ValidTaskCookie uint32 = 0xBADB0100

	// InvalidTaskCookie marks a destroyed or never-initialized record.
	InvalidTaskCookie uint32 = 0x0

	// DefaultIdleStackDepth is the stack depth given to the idle task.
	DefaultIdleStackDepth = 256

	// MinStackDepth is the smallest stack depth New will accept.
	MinStackDepth = 64

	// DefaultTicksPerMillisecond is the tick-to-millisecond resolution
	// used until Config.TicksPerMillisecond overrides it at startup.
	DefaultTicksPerMillisecond = 1

	// DefaultHeapSize is the size of the fixed region handed to the bump
	// allocator when an application doesn't provide its own.
	DefaultHeapSize = 1 << 20 // 1MiB, generous for a host-simulated kernel

	// CoordinatorDrainTimeout is a time bound for a task acknowledging a
	// pend-switch signal. No code reads it: port/sim hands the CPU
	// directly from one task goroutine to the next in YieldCPU, with no
	// coordinator goroutine and no timeout, so a task that never resumes
	// blocks indefinitely.
	CoordinatorDrainTimeout = 5 * time.Second
)
