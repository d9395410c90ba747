package rtos

import "github.com/behrlich/go-rtos/internal/metrics"

// Snapshot is a point-in-time copy of the kernel's scheduling counters.
type Snapshot = metrics.Snapshot

// Observer receives kernel events as they happen, for callers that want
// push-based metrics instead of polling Metrics.
type Observer = metrics.Observer

// NopObserver discards every event; it is the default when
// WithObserver is not supplied to Init.
var NopObserver = metrics.NopObserver

// Metrics returns a point-in-time snapshot of the running kernel's
// scheduling counters: context switches, task creation/destruction,
// faults, wake/mutex-contention counts, and tick wraps.
func Metrics() Snapshot {
	return kernelMetrics()
}
