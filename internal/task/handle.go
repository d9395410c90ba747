package task

import "errors"

// ErrInvalidHandle is returned by every TaskHandle accessor once the
// underlying task has been destroyed. Matches spec.md §7's requirement
// that use-after-destroy surface as a distinct, non-fatal error value
// rather than a panic or a silent read of freed memory.
var ErrInvalidHandle = errors.New("task: handle refers to a destroyed task")

// Handle is the only way application code touches a Record. Every
// accessor re-checks the validity cookie first, so a handle captured
// before a Destroy call fails safely afterwards instead of reading
// memory the allocator may have already reused.
type Handle struct {
	r *Record
}

// NewHandle wraps a record for application-facing use.
func NewHandle(r *Record) Handle { return Handle{r: r} }

func (h Handle) valid() bool { return h.r != nil && h.r.Valid() }

// TID returns the task's identifier.
func (h Handle) TID() (uint64, error) {
	if !h.valid() {
		return 0, ErrInvalidHandle
	}
	return h.r.TID, nil
}

// Name returns the task's name.
func (h Handle) Name() (string, error) {
	if !h.valid() {
		return "", ErrInvalidHandle
	}
	return h.r.Name, nil
}

// Priority returns the task's scheduling priority.
func (h Handle) Priority() (Priority, error) {
	if !h.valid() {
		return 0, ErrInvalidHandle
	}
	return h.r.Priority, nil
}

// State returns the task's current scheduling state.
func (h Handle) State() (State, error) {
	if !h.valid() {
		return 0, ErrInvalidHandle
	}
	return h.r.State, nil
}

// StackSize returns the task's configured stack depth in bytes.
func (h Handle) StackSize() (int, error) {
	if !h.valid() {
		return 0, ErrInvalidHandle
	}
	return h.r.stackDepth, nil
}

// Destroy marks the task for reclamation. Returns false if the task was
// already destroyed (idempotent, per spec.md §8 property 6), and
// ErrInvalidHandle only for a zero Handle that wraps no record.
func (h Handle) Destroy() (bool, error) {
	if h.r == nil {
		return false, ErrInvalidHandle
	}
	return h.r.MarkDestroy(), nil
}

// Record returns the underlying record for package-internal callers
// (sched, port) that need direct access. Application code should never
// need this; it exists so internal/sched can resolve a Handle back to
// the record it must enqueue or switch to.
func (h Handle) Record() *Record { return h.r }
