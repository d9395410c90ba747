//go:build linux

package linuxhw

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// GuardedAllocator hands out stacks backed by real mmap'd pages with an
// unmapped guard page on either side, so a task that overruns its stack
// segfaults immediately instead of silently corrupting the next task's
// memory — the host-OS equivalent of the MPU-based stack-overflow
// protection a real microcontroller port would configure. It implements
// the same heap.Allocator interface internal/heap.Bump does, so
// task.New accepts either. rtos.Init has no option to select it: Init
// always allocates task stacks from a heap.Bump.
//
// Allocations are rounded up to the page size. Like heap.Bump, there is
// no Free: every region mmap'd here lives until the process exits.
type GuardedAllocator struct {
	pageSize int

	mu    sync.Mutex
	used  int
	regns []region
}

type region struct {
	base []byte // includes both guard pages
	size int    // usable size between the guards
}

// NewGuardedAllocator returns an allocator ready to serve stacks.
func NewGuardedAllocator() *GuardedAllocator {
	return &GuardedAllocator{pageSize: unix.Getpagesize()}
}

// Alloc mmaps size bytes (rounded up to a page) of read/write stack
// flanked by two PROT_NONE guard pages.
func (a *GuardedAllocator) Alloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pages := (size + a.pageSize - 1) / a.pageSize
	if pages == 0 {
		pages = 1
	}
	usable := pages * a.pageSize
	total := usable + 2*a.pageSize

	base, err := unix.Mmap(-1, 0, total, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("linuxhw: mmap stack region: %w", err)
	}

	mid := base[a.pageSize : a.pageSize+usable]
	if err := unix.Mprotect(mid, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		unix.Munmap(base)
		return nil, fmt.Errorf("linuxhw: mprotect stack region: %w", err)
	}

	a.used += usable
	a.regns = append(a.regns, region{base: base, size: usable})
	return mid, nil
}

// Used reports bytes handed out so far, excluding the guard pages
// themselves since they are never usable stack space.
func (a *GuardedAllocator) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Capacity has no fixed ceiling for this allocator: the host's virtual
// address space is the only limit, unlike internal/heap.Bump's fixed
// region. Reports what has been allocated so far, matching Used.
func (a *GuardedAllocator) Capacity() int {
	return a.Used()
}
