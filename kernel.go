// Package rtos is the application-facing surface of the kernel: task
// creation, the scheduler bootstrap, and the syscalls and sync
// primitives built on top of it. Grounded on the teacher's root
// package, which re-exports its internal backend/device machinery
// behind a small set of constructors (DefaultParams, CreateAndServe)
// rather than asking applications to reach into internal/ themselves.
package rtos

import (
	"errors"
	"fmt"
	"sync"

	"github.com/behrlich/go-rtos/internal/constants"
	"github.com/behrlich/go-rtos/internal/heap"
	"github.com/behrlich/go-rtos/internal/kernel"
	"github.com/behrlich/go-rtos/internal/logging"
	"github.com/behrlich/go-rtos/internal/metrics"
	"github.com/behrlich/go-rtos/internal/port"
	"github.com/behrlich/go-rtos/internal/port/sim"
	"github.com/behrlich/go-rtos/internal/sched"
	"github.com/behrlich/go-rtos/internal/task"
)

// Config holds the kernel's build/startup-time configuration, per
// spec.md §6: the pieces that are set once at init and never
// discovered at runtime. Init populates its fields through the With*
// options below, in the teacher's DeviceParams/Options
// style generalized to functional options since the kernel's knobs are
// fewer and mostly optional.
type Config struct {
	Logger              *logging.Logger
	Observer            Observer
	Port                port.Port
	TicksPerMillisecond uint64
	HeapSize            int
}

// Option configures a Config passed to Init.
type Option func(*Config)

// WithLogger sets the kernel's trace logger. Defaults to a silent
// logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithObserver sets the push-based metrics sink. Defaults to
// NopObserver.
func WithObserver(o Observer) Option {
	return func(c *Config) { c.Observer = o }
}

// WithPort overrides the platform port. Defaults to a fresh
// goroutine-backed port/sim.Port, suitable for tests and host-simulated
// applications.
func WithPort(p port.Port) Option {
	return func(c *Config) { c.Port = p }
}

// WithTicksPerMillisecond sets the clock resolution. Defaults to
// constants.DefaultTicksPerMillisecond. Must be non-zero.
func WithTicksPerMillisecond(n uint64) Option {
	return func(c *Config) { c.TicksPerMillisecond = n }
}

// WithHeapSize overrides the fixed bump-allocator region size used for
// task stacks. Defaults to constants.DefaultHeapSize.
func WithHeapSize(n int) Option {
	return func(c *Config) { c.HeapSize = n }
}

func defaultConfig() Config {
	return Config{
		Observer:            NopObserver,
		Port:                sim.New(),
		TicksPerMillisecond: constants.DefaultTicksPerMillisecond,
		HeapSize:            constants.DefaultHeapSize,
	}
}

var (
	initMu    sync.Mutex
	allocator heap.Allocator
	initDone  bool
)

// Init builds the process-wide scheduler and its idle task, and
// installs it as the kernel instance every other rtos/ksync/ktime call
// reaches through internal/kernel. Must be called exactly once, before
// any NewTask or StartScheduler call. Does not start the scheduler —
// call StartScheduler once every startup task has been created.
func Init(opts ...Option) error {
	initMu.Lock()
	defer initMu.Unlock()
	if initDone {
		return NewConfigError("Init", "kernel already initialized", nil)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.TicksPerMillisecond == 0 {
		return NewConfigError("Init", "ticks-per-millisecond must be non-zero", nil)
	}

	s := sched.New(cfg.Port, cfg.Logger, cfg.Observer, metrics.NewMetrics())
	if binder, ok := cfg.Port.(interface{ Bind(*sched.Scheduler) }); ok {
		binder.Bind(s)
	}
	s.SetResolution(cfg.TicksPerMillisecond)
	kernel.Set(s)

	allocator = heap.New(cfg.HeapSize)
	idleRec, err := task.New(allocator, constants.DefaultIdleStackDepth, "idle", task.Idle)
	if err != nil {
		if errors.Is(err, heap.ErrOutOfMemory) {
			// spec.md §7: out-of-memory at task creation is a fatal
			// kernel violation, not a recoverable configuration error.
			kernel.Fault(fmt.Sprintf("rtos: Init: %v", err))
		}
		return NewConfigError("Init", "failed to allocate idle task stack", err)
	}
	idleRec.Entry = idleLoop
	idleRec.Args = task.Empty()
	idleRec.SP = kernel.InitializeStack(idleRec.StackTop(), idleRec.Entry, idleRec.Args)
	kernel.AddReadyTask(idleRec)

	initDone = true
	return nil
}

// idleLoop is the idle task's entry function: it never has real work,
// so it yields immediately and forever, letting any other ready task
// run and the scheduler's ready-scan always find at least one live
// record.
func idleLoop(args *task.Args) {
	for {
		kernel.Yield()
	}
}

// StartScheduler installs the highest-priority ready task as current
// and resumes it. Never returns; callers typically invoke it from its
// own goroutine (`go rtos.StartScheduler()`) when running under
// port/sim, or as the final call in main() on real hardware. Panics if
// Init has not been called.
func StartScheduler() {
	kernel.Start()
}

func kernelMetrics() Snapshot {
	return kernel.MetricsSnapshot()
}
