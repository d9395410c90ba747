package queue

import "github.com/behrlich/go-rtos/internal/spin"

// Synchronized wraps a FIFO with a spin lock so it can be mutated from
// any context without a surrounding critical section — useful for
// queues that are touched by code outside the scheduler's own
// critical-section discipline. The scheduler's own ready/delay queues
// are instead guarded by the port's interrupt-masking critical section
// (per spec, never both on the same queue); this wrapper exists for
// call sites (e.g. an application-level producer/consumer queue built
// on the same container) that have no access to that critical section.
type Synchronized[T any, PT Linker[T]] struct {
	mu spin.Mutex
	q  FIFO[T, PT]
}

// Enqueue appends n under the spin lock.
func (s *Synchronized[T, PT]) Enqueue(n *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Enqueue(n)
}

// Dequeue removes the head under the spin lock.
func (s *Synchronized[T, PT]) Dequeue() (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Dequeue()
}

// Remove partitions the queue under the spin lock.
func (s *Synchronized[T, PT]) Remove(pred func(*T) bool) FIFO[T, PT] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Remove(pred)
}

// Append concatenates other onto s under the spin lock.
func (s *Synchronized[T, PT]) Append(other *FIFO[T, PT]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q.Append(other)
}

// RemoveAll transfers the contents out under the spin lock.
func (s *Synchronized[T, PT]) RemoveAll() FIFO[T, PT] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.RemoveAll()
}

// IsEmpty reports emptiness under the spin lock.
func (s *Synchronized[T, PT]) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.IsEmpty()
}

// Len reports the length under the spin lock.
func (s *Synchronized[T, PT]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Len()
}
