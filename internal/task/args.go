package task

import "fmt"

// Args is an opaque, indexed bag of word-sized values owned by a task,
// addressable by index. A task's entry function receives a *Args.
// Grounded on the original core's Args/ArgsBuilder (a fixed-capacity
// Vec filled before the task ever runs), adapted to Go's word size.
type Args struct {
	words []uint64
}

// Empty is the zero-capacity Args used by tasks that take no arguments.
func Empty() *Args { return &Args{} }

// Len returns the number of words in the bag.
func (a *Args) Len() int { return len(a.words) }

// At returns the word at index, or (0, false) if index is out of
// range. Unlike the original core's indexing (which panics), At
// returns a bool so callers inside a task's own entry function — which
// must never panic, since a panicking task has no stack-unwind target
// on real hardware — can check before using the value.
func (a *Args) At(index int) (uint64, bool) {
	if index < 0 || index >= len(a.words) {
		return 0, false
	}
	return a.words[index], true
}

// ArgsBuilder accumulates up to cap word-sized arguments before a task
// is spawned, then finalizes them into an immutable Args.
type ArgsBuilder struct {
	cap   int
	words []uint64
}

// NewArgsBuilder returns a builder with room for cap words.
func NewArgsBuilder(cap int) *ArgsBuilder {
	if cap < 0 {
		cap = 0
	}
	return &ArgsBuilder{cap: cap, words: make([]uint64, 0, cap)}
}

// AddArg appends one word. Adding more than cap arguments is a builder
// misuse; per spec.md §7 this is fatal rather than a returned error,
// since it can only happen from a programming mistake fixed at compile
// time, never from runtime input. AddArg panics to make that fatality
// visible at the call site instead of surfacing a generic kernel fault
// far away from the bug.
func (b *ArgsBuilder) AddArg(word uint64) *ArgsBuilder {
	if len(b.words) >= b.cap {
		panic(fmt.Sprintf("task: ArgsBuilder.AddArg: capacity %d exceeded", b.cap))
	}
	b.words = append(b.words, word)
	return b
}

// Finalize returns the immutable Args. The builder must not be reused
// afterwards.
func (b *ArgsBuilder) Finalize() *Args {
	return &Args{words: b.words}
}
