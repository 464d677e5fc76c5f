package qamp

import "errors"

// Sentinel errors returned by the engine. The width errors reject bad
// input before any state is allocated; the index and normalization errors
// signal invariant violations inside a run; the rest are admission
// conditions of the batch engine.
var (
	ErrInvalidWidth       = errors.New("register width must be at least 1")
	ErrWidthTooLarge      = errors.New("register width exceeds MaxQubits")
	ErrIndexOutOfRange    = errors.New("basis state index out of range")
	ErrNormalizationDrift = errors.New("state probabilities no longer sum to 1")
	ErrMemoryBudget       = errors.New("state vector exceeds the memory budget")
	ErrNoWorkers          = errors.New("no available workers")
	ErrEngineFaulted      = errors.New("engine fault latch is open")
)

// IsFatal reports whether err indicates a numeric or invariant fault inside
// the simulation itself, as opposed to a rejected input. Fatal errors trip
// the pool's fault latch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrNormalizationDrift)
}
