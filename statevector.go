// statevector.go
package qamp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

const (
	// MaxQubits is the upper bound on register width; a 30-qubit vector is
	// already 16 GiB of amplitudes.
	MaxQubits = 30

	// NormTolerance is the allowed drift of total probability from 1.
	NormTolerance = 1e-9
)

/*
StateVector holds the 2^n complex amplitudes of an n-qubit register.
Index i is the basis state whose binary digits are the qubit values,
qubit 0 in the least significant bit; index 0 is the ground state.

Every transform preserves Σ|amp|² = 1 up to floating point, and CheckNorm
verifies that invariant after a transform chain. A vector is owned by a
single run at a time and is not safe for concurrent mutation.
*/
type StateVector struct {
	qubits int
	amps   []complex128
}

// NewStateVector allocates an n-qubit register in the ground state |0...0⟩.
func NewStateVector(qubits int) (*StateVector, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, qubits)
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrWidthTooLarge, qubits, MaxQubits)
	}

	sv := &StateVector{
		qubits: qubits,
		amps:   make([]complex128, 1<<qubits),
	}
	sv.amps[0] = 1
	return sv, nil
}

// Qubits returns the register width.
func (sv *StateVector) Qubits() int { return sv.qubits }

// Size returns the number of basis states, 2^n.
func (sv *StateVector) Size() int { return len(sv.amps) }

// Reset returns the register to the ground state.
func (sv *StateVector) Reset() {
	for i := range sv.amps {
		sv.amps[i] = 0
	}
	sv.amps[0] = 1
}

// Amplitudes returns a copy of the amplitude vector.
func (sv *StateVector) Amplitudes() []complex128 {
	out := make([]complex128, len(sv.amps))
	copy(out, sv.amps)
	return out
}

// ApplyHadamardAll replaces the vector with H⊗n·v, one single-qubit
// butterfly pass per qubit. On the ground state this yields the uniform
// superposition with every amplitude 1/√N.
func (sv *StateVector) ApplyHadamardAll() {
	for q := 0; q < sv.qubits; q++ {
		sv.applyHadamard(q)
	}
}

// ApplyPhaseFlip negates the amplitude at one basis index. The flip is a
// sign change only; no rounding is introduced.
func (sv *StateVector) ApplyPhaseFlip(index int) error {
	if index < 0 || index >= len(sv.amps) {
		return fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, index, len(sv.amps))
	}
	sv.amps[index] = -sv.amps[index]
	return nil
}

// ApplyDiffusion reflects every amplitude about the mean amplitude,
// v[i] ← 2·mean − v[i], the closed form of the operator 2|s⟩⟨s| − I.
func (sv *StateVector) ApplyDiffusion() {
	var sum complex128
	for _, amp := range sv.amps {
		sum += amp
	}
	mean := sum / complex(float64(len(sv.amps)), 0)

	for i := range sv.amps {
		sv.amps[i] = 2*mean - sv.amps[i]
	}
}

// Probabilities returns |amp|² for every basis state.
func (sv *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(sv.amps))
	for i, amp := range sv.amps {
		p := cmplx.Abs(amp)
		probs[i] = p * p
	}
	return probs
}

// CheckNorm verifies that the probabilities sum to 1 within NormTolerance.
func (sv *StateVector) CheckNorm() error {
	total := floats.Sum(sv.Probabilities())
	if math.Abs(total-1) > NormTolerance {
		return fmt.Errorf("%w: total probability %.12f", ErrNormalizationDrift, total)
	}
	return nil
}

// Sample draws one basis index according to the Born rule, consuming a
// single draw from src. A nil source falls back to the process-wide
// generator. The vector itself is left untouched.
func (sv *StateVector) Sample(src RandomSource) int {
	if src == nil {
		src = globalSource{}
	}

	probs := sv.Probabilities()
	total := floats.Sum(probs)
	for i := range probs {
		probs[i] /= total
	}

	r := src.Float64()
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if r <= cumulative {
			return i
		}
	}
	return len(probs) - 1
}

// MostLikely returns the index of maximal probability, lowest index first
// on ties.
func (sv *StateVector) MostLikely() int {
	return floats.MaxIdx(sv.Probabilities())
}
