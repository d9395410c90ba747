// Package queue implements the kernel's intrusive containers: a FIFO
// queue and an ordered list, both threading a "next" pointer through
// the payload itself rather than boxing it in a separate list node, so
// a task record moves between queues by pointer swap and never by
// copy — the same ownership discipline as an atomic_queue/sorted_list
// pair in the original core, and the same node-owned-by-exactly-one-
// container discipline alphadose/zenq's lock-free list uses for parked
// goroutines.
//
// Both containers are destroyed iteratively: Drain/RemoveAll walk with
// a plain for-loop rather than recursing, so a long queue going out of
// scope can't blow the stack.
package queue

// Linker is implemented by *T for a payload type T that can be threaded
// onto a FIFO or Ordered list. T keeps its own next pointer; the
// container never allocates a wrapper node.
type Linker[T any] interface {
	*T
	Next() *T
	SetNext(*T)
}

// FIFO is a singly linked, intrusive FIFO queue. The zero value is an
// empty queue ready to use.
type FIFO[T any, PT Linker[T]] struct {
	head, tail *T
	size       int
}

// Enqueue appends n to the tail in O(1). n's existing next pointer is
// overwritten; callers must not enqueue a node that is a member of
// another container.
func (q *FIFO[T, PT]) Enqueue(n *T) {
	if n == nil {
		return
	}
	PT(n).SetNext(nil)
	if q.tail == nil {
		q.head = n
	} else {
		PT(q.tail).SetNext(n)
	}
	q.tail = n
	q.size++
}

// Dequeue removes and returns the head in O(1).
func (q *FIFO[T, PT]) Dequeue() (*T, bool) {
	if q.head == nil {
		return nil, false
	}
	n := q.head
	q.head = PT(n).Next()
	if q.head == nil {
		q.tail = nil
	}
	PT(n).SetNext(nil)
	q.size--
	return n, true
}

// Peek returns the head without removing it.
func (q *FIFO[T, PT]) Peek() (*T, bool) {
	if q.head == nil {
		return nil, false
	}
	return q.head, true
}

// Remove partitions the queue in O(n): nodes matching pred are removed,
// in encounter order, into the returned queue; non-matching nodes are
// retained in place (also in encounter order).
func (q *FIFO[T, PT]) Remove(pred func(*T) bool) FIFO[T, PT] {
	var matched, kept FIFO[T, PT]
	for n := q.head; n != nil; {
		next := PT(n).Next()
		PT(n).SetNext(nil)
		if pred(n) {
			matched.Enqueue(n)
		} else {
			kept.Enqueue(n)
		}
		n = next
	}
	*q = kept
	return matched
}

// Append concatenates other onto the tail of q in O(1), emptying other.
func (q *FIFO[T, PT]) Append(other *FIFO[T, PT]) {
	if other.head == nil {
		return
	}
	if q.tail == nil {
		q.head = other.head
	} else {
		PT(q.tail).SetNext(other.head)
	}
	q.tail = other.tail
	q.size += other.size
	other.head, other.tail, other.size = nil, nil, 0
}

// RemoveAll transfers the entire contents of q into the returned queue
// in O(1), leaving q empty.
func (q *FIFO[T, PT]) RemoveAll() FIFO[T, PT] {
	out := FIFO[T, PT]{head: q.head, tail: q.tail, size: q.size}
	q.head, q.tail, q.size = nil, nil, 0
	return out
}

// IsEmpty reports whether the queue has no elements.
func (q *FIFO[T, PT]) IsEmpty() bool { return q.head == nil }

// Len returns the number of elements currently queued.
func (q *FIFO[T, PT]) Len() int { return q.size }

// Each calls fn for every element from head to tail. fn must not mutate
// the queue's linkage; use Remove for that.
func (q *FIFO[T, PT]) Each(fn func(*T)) {
	for n := q.head; n != nil; n = PT(n).Next() {
		fn(n)
	}
}

// Drain removes every element, calling fn for each, iteratively.
func (q *FIFO[T, PT]) Drain(fn func(*T)) {
	for {
		n, ok := q.Dequeue()
		if !ok {
			return
		}
		fn(n)
	}
}
