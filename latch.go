package qamp

import (
	"log"
	"sync"
	"time"
)

/*
FaultLatch guards the engine against its own bugs. A normalization drift or
an out-of-range index inside a run means the simulator produced an invalid
state, and every result after that point is suspect. The latch trips on the
first fatal fault and the pool rejects all new jobs until Reset is called.

There is no probationary half-open state and no reset timeout: an invariant
fault does not clear with time, only with a fix.
*/
type FaultLatch struct {
	mu        sync.RWMutex
	tripped   bool
	cause     error
	trippedAt time.Time
	faults    int64
	metrics   *Metrics
}

// NewFaultLatch returns a closed latch.
func NewFaultLatch() *FaultLatch {
	return &FaultLatch{}
}

/*
Trip latches the engine open and records the fault that did it. Later
faults bump the counter; the first cause is the one kept.
*/
func (fl *FaultLatch) Trip(cause error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	fl.faults++
	if fl.tripped {
		return
	}
	fl.tripped = true
	fl.cause = cause
	fl.trippedAt = time.Now()
	log.Printf("Fault latch tripped: %v", cause)
}

// Allow reports whether new runs may start.
func (fl *FaultLatch) Allow() bool {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return !fl.tripped
}

// Cause returns the fault that tripped the latch, or nil when closed.
func (fl *FaultLatch) Cause() error {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.cause
}

// TrippedAt returns when the latch opened.
func (fl *FaultLatch) TrippedAt() time.Time {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.trippedAt
}

// Faults returns the total count of fatal faults seen.
func (fl *FaultLatch) Faults() int64 {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.faults
}

/*
Reset closes the latch. This is a manual operation, meant for after the
underlying defect has been dealt with.
*/
func (fl *FaultLatch) Reset() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.tripped {
		log.Printf("Fault latch reset, previous cause: %v", fl.cause)
	}
	fl.tripped = false
	fl.cause = nil
}

/*
Observe implements the Regulator interface by accepting system metrics.
*/
func (fl *FaultLatch) Observe(metrics *Metrics) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.metrics = metrics
}

/*
Limit implements the Regulator interface. A tripped latch limits all new
work.
*/
func (fl *FaultLatch) Limit() bool {
	return !fl.Allow()
}

/*
Renormalize implements the Regulator interface. A tripped latch never
recovers on its own; recovery is the manual Reset.
*/
func (fl *FaultLatch) Renormalize() {}
