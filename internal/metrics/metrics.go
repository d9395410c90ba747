// Package metrics tracks kernel performance and operational counters,
// in the same atomic-counter-plus-latency-histogram shape the teacher
// uses for I/O metrics, retargeted at scheduling events: a context
// switch replaces an I/O operation, and "bytes transferred" has no
// analogue so the byte counters are dropped rather than left unused.
package metrics

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the context-switch latency histogram buckets in
// nanoseconds, log-spaced from 1us to 10ms — generous for a cooperative
// scheduler whose switches are dominated by goroutine scheduling, not
// hardware trap latency.
var LatencyBuckets = []uint64{
	1_000,      // 1us
	10_000,     // 10us
	100_000,    // 100us
	1_000_000,  // 1ms
	10_000_000, // 10ms
}

const numLatencyBuckets = 5

// Metrics tracks kernel-wide scheduling counters. The zero value is
// ready to use; NewMetrics exists for symmetry with the rest of the
// kernel's constructors and to stamp StartTime.
type Metrics struct {
	ContextSwitches atomic.Uint64 // completed next-task selections
	TasksCreated    atomic.Uint64
	TasksDestroyed  atomic.Uint64
	Faults          atomic.Uint64 // fatal kernel violations observed

	WakeCalls     atomic.Uint64 // total Wake(wchan) invocations
	WakeNoop      atomic.Uint64 // Wake(wchan) calls that found no sleeper
	MutexContends atomic.Uint64 // Mutex.Lock calls whose first CAS failed
	TickWraps     atomic.Uint64 // tick-counter wraps observed

	TotalSwitchLatencyNs atomic.Uint64
	SwitchLatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64 // UnixNano
}

// NewMetrics returns a ready Metrics instance stamped with the current
// time.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordContextSwitch records a completed reschedule and its latency.
func (m *Metrics) RecordContextSwitch(latencyNs uint64) {
	m.ContextSwitches.Add(1)
	m.TotalSwitchLatencyNs.Add(latencyNs)
	for i, bound := range LatencyBuckets {
		if latencyNs <= bound {
			m.SwitchLatencyBuckets[i].Add(1)
			break
		}
	}
}

// RecordTaskCreated increments the task-creation counter.
func (m *Metrics) RecordTaskCreated() { m.TasksCreated.Add(1) }

// RecordTaskDestroyed increments the task-destruction counter.
func (m *Metrics) RecordTaskDestroyed() { m.TasksDestroyed.Add(1) }

// RecordFault increments the fatal-violation counter.
func (m *Metrics) RecordFault() { m.Faults.Add(1) }

// RecordWake records a Wake(wchan) call, noting whether it found anyone
// sleeping on the channel.
func (m *Metrics) RecordWake(woke bool) {
	m.WakeCalls.Add(1)
	if !woke {
		m.WakeNoop.Add(1)
	}
}

// RecordMutexContend increments the mutex-contention counter.
func (m *Metrics) RecordMutexContend() { m.MutexContends.Add(1) }

// RecordTickWrap increments the tick-wrap counter.
func (m *Metrics) RecordTickWrap() { m.TickWraps.Add(1) }

// Snapshot is a point-in-time copy of the counters, safe to log or
// serialize without holding references into the live atomics.
type Snapshot struct {
	ContextSwitches      uint64
	TasksCreated         uint64
	TasksDestroyed       uint64
	Faults               uint64
	WakeCalls            uint64
	WakeNoop             uint64
	MutexContends        uint64
	TickWraps            uint64
	AvgSwitchLatencyNs   float64
	SwitchLatencyBuckets [numLatencyBuckets]uint64
	UptimeSeconds        float64
}

// Snapshot reads all counters into a plain struct.
func (m *Metrics) Snapshot() Snapshot {
	switches := m.ContextSwitches.Load()
	total := m.TotalSwitchLatencyNs.Load()
	var avg float64
	if switches > 0 {
		avg = float64(total) / float64(switches)
	}

	s := Snapshot{
		ContextSwitches:    switches,
		TasksCreated:       m.TasksCreated.Load(),
		TasksDestroyed:     m.TasksDestroyed.Load(),
		Faults:             m.Faults.Load(),
		WakeCalls:          m.WakeCalls.Load(),
		WakeNoop:           m.WakeNoop.Load(),
		MutexContends:      m.MutexContends.Load(),
		TickWraps:          m.TickWraps.Load(),
		AvgSwitchLatencyNs: avg,
		UptimeSeconds:      time.Since(time.Unix(0, m.StartTime.Load())).Seconds(),
	}
	for i := range s.SwitchLatencyBuckets {
		s.SwitchLatencyBuckets[i] = m.SwitchLatencyBuckets[i].Load()
	}
	return s
}

// Observer receives kernel events as they happen, for callers that want
// push-based metrics (e.g. forwarding into an external time-series
// sink) rather than polling Snapshot.
type Observer interface {
	ObserveContextSwitch(latencyNs uint64)
	ObserveWake(woke bool)
	ObserveTickWrap()
	ObserveFault(reason string)
}

// nopObserver discards every event.
type nopObserver struct{}

func (nopObserver) ObserveContextSwitch(uint64) {}
func (nopObserver) ObserveWake(bool)            {}
func (nopObserver) ObserveTickWrap()            {}
func (nopObserver) ObserveFault(string)         {}

// NopObserver is the default Observer: it discards everything.
var NopObserver Observer = nopObserver{}

// FromMetrics adapts a *Metrics into an Observer, so a Config that only
// wants counters doesn't need a second implementation.
type metricsObserver struct{ m *Metrics }

func (o metricsObserver) ObserveContextSwitch(latencyNs uint64) { o.m.RecordContextSwitch(latencyNs) }
func (o metricsObserver) ObserveWake(woke bool)                 { o.m.RecordWake(woke) }
func (o metricsObserver) ObserveTickWrap()                      { o.m.RecordTickWrap() }
func (o metricsObserver) ObserveFault(string)                   { o.m.RecordFault() }

// FromMetrics wraps m as an Observer.
func FromMetrics(m *Metrics) Observer { return metricsObserver{m: m} }
