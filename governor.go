package qamp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// VectorBytes returns the amplitude buffer size of an n-qubit register,
// 16 bytes per complex128.
func VectorBytes(qubits int) int64 {
	return int64(16) << qubits
}

/*
MemoryGovernor implements the Regulator interface to keep the engine's
amplitude allocations inside a fixed byte budget. Every run holds 2^n
complex amplitudes for its duration; the governor admits a run only while
the budget has room, which caps total live memory across concurrent
workers. The budget is a weighted semaphore: Admit acquires the vector's
byte weight, Release gives it back.
*/
type MemoryGovernor struct {
	mu      sync.RWMutex
	limit   int64
	sem     *semaphore.Weighted
	inUse   atomic.Int64
	metrics *Metrics
}

// NewMemoryGovernor creates a governor with the given byte budget; zero or
// negative takes the NewConfig default.
func NewMemoryGovernor(limitBytes int64) *MemoryGovernor {
	if limitBytes <= 0 {
		limitBytes = NewConfig().MemoryLimitBytes
	}
	return &MemoryGovernor{
		limit: limitBytes,
		sem:   semaphore.NewWeighted(limitBytes),
	}
}

// Admit blocks until the budget can hold an n-qubit vector or ctx ends.
// A vector larger than the whole budget is rejected outright with
// ErrMemoryBudget.
func (mg *MemoryGovernor) Admit(ctx context.Context, qubits int) error {
	need := VectorBytes(qubits)
	if need > mg.limit {
		return fmt.Errorf("%w: %d qubits need %d bytes, budget %d", ErrMemoryBudget, qubits, need, mg.limit)
	}
	if err := mg.sem.Acquire(ctx, need); err != nil {
		return fmt.Errorf("memory admission: %w", err)
	}
	mg.inUse.Add(need)
	return nil
}

// TryAdmit is the non-blocking Admit.
func (mg *MemoryGovernor) TryAdmit(qubits int) bool {
	need := VectorBytes(qubits)
	if need > mg.limit {
		return false
	}
	if !mg.sem.TryAcquire(need) {
		return false
	}
	mg.inUse.Add(need)
	return true
}

// Release returns an n-qubit vector's bytes to the budget.
func (mg *MemoryGovernor) Release(qubits int) {
	need := VectorBytes(qubits)
	mg.sem.Release(need)
	mg.inUse.Add(-need)
}

// InUse returns the bytes currently admitted.
func (mg *MemoryGovernor) InUse() int64 {
	return mg.inUse.Load()
}

// Budget returns the total byte budget.
func (mg *MemoryGovernor) Budget() int64 {
	return mg.limit
}

/*
Observe implements the Regulator interface by publishing the governor's
utilization into the shared metrics.
*/
func (mg *MemoryGovernor) Observe(metrics *Metrics) {
	mg.mu.Lock()
	mg.metrics = metrics
	mg.mu.Unlock()

	utilization := float64(mg.inUse.Load()) / float64(mg.limit)
	metrics.mu.Lock()
	metrics.ResourceUtilization = utilization
	metrics.mu.Unlock()
}

/*
Limit implements the Regulator interface. The governor limits once
admitted bytes reach 90% of the budget.
*/
func (mg *MemoryGovernor) Limit() bool {
	return float64(mg.inUse.Load()) >= float64(mg.limit)*0.9
}

/*
Renormalize implements the Regulator interface by refreshing the published
utilization reading.
*/
func (mg *MemoryGovernor) Renormalize() {
	mg.mu.RLock()
	metrics := mg.metrics
	mg.mu.RUnlock()

	if metrics != nil {
		mg.Observe(metrics)
	}
}
