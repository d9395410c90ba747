package queue

// Ordered is an intrusive, ascending-order singly linked list keyed by a
// caller-supplied Less comparator. Provided for callers that want O(1)
// pop-minimum instead of the O(n) scan-and-filter the FIFO-based delay
// queues use; the scheduler itself does not need it (its delay queues
// are small and scanned once per tick regardless), but it is part of
// the containers contract for future priority- or deadline-ordered
// uses.
type Ordered[T any, PT Linker[T]] struct {
	head *T
	less func(a, b *T) bool
	size int
}

// NewOrdered returns an empty ordered list using less to compare
// payloads. less(a, b) must report whether a sorts before b.
func NewOrdered[T any, PT Linker[T]](less func(a, b *T) bool) *Ordered[T, PT] {
	return &Ordered[T, PT]{less: less}
}

// Insert places n in its sorted position in O(n) worst case.
func (o *Ordered[T, PT]) Insert(n *T) {
	if n == nil {
		return
	}
	if o.head == nil || o.less(n, o.head) {
		PT(n).SetNext(o.head)
		o.head = n
		o.size++
		return
	}
	prev := o.head
	for {
		next := PT(prev).Next()
		if next == nil || o.less(n, next) {
			break
		}
		prev = next
	}
	PT(n).SetNext(PT(prev).Next())
	PT(prev).SetNext(n)
	o.size++
}

// Pop removes and returns the minimum element in O(1).
func (o *Ordered[T, PT]) Pop() (*T, bool) {
	if o.head == nil {
		return nil, false
	}
	n := o.head
	o.head = PT(n).Next()
	PT(n).SetNext(nil)
	o.size--
	return n, true
}

// Remove partitions the list in O(n), preserving order in both results.
func (o *Ordered[T, PT]) Remove(pred func(*T) bool) *Ordered[T, PT] {
	matched := NewOrdered[T, PT](o.less)
	var kept *T
	var keptTail *T
	for n := o.head; n != nil; {
		next := PT(n).Next()
		PT(n).SetNext(nil)
		if pred(n) {
			matched.Insert(n)
		} else {
			if kept == nil {
				kept = n
			} else {
				PT(keptTail).SetNext(n)
			}
			keptTail = n
		}
		n = next
	}
	o.head = kept
	o.size -= matched.size
	return matched
}

// Merge folds other into o, leaving other empty. Each of other's m
// elements is inserted one at a time, so O(m·(n+m)) worst case.
func (o *Ordered[T, PT]) Merge(other *Ordered[T, PT]) {
	for {
		n, ok := other.Pop()
		if !ok {
			return
		}
		o.Insert(n)
	}
}

// IsEmpty reports whether the list has no elements.
func (o *Ordered[T, PT]) IsEmpty() bool { return o.head == nil }

// Len returns the number of elements.
func (o *Ordered[T, PT]) Len() int { return o.size }
