// Package heap implements the bump allocator the kernel uses to carve
// task stacks out of a fixed region. It is the Go stand-in for the
// external heap allocator contract spec.md's §1 places out of scope
// ("a bump allocator over a fixed region"): never frees, trivially
// interrupt-safe as long as allocation itself runs with interrupts
// disabled (or, as here, behind a spin lock) because it never unwinds
// state on the failure path.
package heap

import (
	"errors"
	"fmt"

	"github.com/behrlich/go-rtos/internal/spin"
)

// ErrOutOfMemory is wrapped into the error Alloc returns when the
// region is exhausted, so callers can distinguish genuine allocator
// exhaustion (spec.md §7: fatal, no recovery) from a caller-supplied
// bad size (an ordinary configuration mistake).
var ErrOutOfMemory = errors.New("heap: out of memory")

// Allocator hands out byte slices carved from a fixed-size region and
// never reclaims them. NewTask calls it once per task for the stack
// buffer; nothing in the kernel ever calls a matching free.
type Allocator interface {
	// Alloc returns a zeroed slice of exactly size bytes, or an error if
	// the region is exhausted.
	Alloc(size int) ([]byte, error)
	// Used reports bytes handed out so far.
	Used() int
	// Capacity reports the total region size.
	Capacity() int
}

// Bump is a fixed-region bump allocator: a single cursor that only ever
// moves forward. Safe for concurrent use via an internal spin lock,
// since task creation can in principle race with another task creation
// in a multi-queue port even though only one task ever runs at a time.
type Bump struct {
	mu     spin.Mutex
	region []byte
	offset int
}

// New creates a bump allocator over a freshly allocated region of size
// bytes. size is fixed for the allocator's lifetime, mirroring a real
// target's linker-reserved heap section.
func New(size int) *Bump {
	if size <= 0 {
		panic("heap: non-positive region size")
	}
	return &Bump{region: make([]byte, size)}
}

// Alloc implements Allocator.
func (b *Bump) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap: invalid allocation size %d", size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.offset+size > len(b.region) {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrOutOfMemory, size, len(b.region)-b.offset)
	}
	slice := b.region[b.offset : b.offset+size : b.offset+size]
	b.offset += size
	return slice, nil
}

// Used implements Allocator.
func (b *Bump) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offset
}

// Capacity implements Allocator.
func (b *Bump) Capacity() int {
	return len(b.region)
}

var (
	defaultMu  spin.Mutex
	defaultAlc *Bump
)

// Default returns the process-wide default allocator, created with a
// region of size bytes on the first call; later calls ignore size.
// Nothing in the kernel calls it: rtos.Init creates its own Bump via
// New, and internal/task.New always takes its Allocator as an argument.
func Default(size int) *Bump {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultAlc == nil {
		defaultAlc = New(size)
	}
	return defaultAlc
}
