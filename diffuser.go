package qamp

import "fmt"

/*
Diffuser is the reflection about the uniform superposition, 2|s⟩⟨s| − I.
It depends only on the register width, never on which index is marked, so
one instance is built per run and reused across every iteration.

Two equivalent realizations are provided. Apply uses the closed form, a
reflection of each amplitude about the mean. ApplyGateSequence builds the
same operator from elementary gates: Hadamard on every qubit, X on every
qubit, a multi-controlled phase flip on the all-ones state, then the X and
Hadamard layers undone. The bare circuit carries a global phase of −1
relative to the closed form; a final negation cancels it so both methods
produce identical vectors.
*/
type Diffuser struct {
	qubits int
}

// NewDiffuser builds a diffuser for an n-qubit register.
func NewDiffuser(qubits int) (*Diffuser, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, qubits)
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrWidthTooLarge, qubits, MaxQubits)
	}
	return &Diffuser{qubits: qubits}, nil
}

// Apply reflects the vector about the uniform superposition using the
// closed-form mean reflection.
func (d *Diffuser) Apply(sv *StateVector) error {
	if sv.Qubits() != d.qubits {
		return fmt.Errorf("%w: diffuser built for %d qubits, vector has %d", ErrInvalidWidth, d.qubits, sv.Qubits())
	}
	sv.ApplyDiffusion()
	return nil
}

// ApplyGateSequence applies the same reflection via the explicit circuit.
// The multi-controlled phase flip is realized as H·MCX·H on the last qubit
// with every other qubit as control.
func (d *Diffuser) ApplyGateSequence(sv *StateVector) error {
	if sv.Qubits() != d.qubits {
		return fmt.Errorf("%w: diffuser built for %d qubits, vector has %d", ErrInvalidWidth, d.qubits, sv.Qubits())
	}

	last := d.qubits - 1

	sv.ApplyHadamardAll()
	sv.applyNotAll()
	sv.applyHadamard(last)
	sv.applyMultiControlledNot(last)
	sv.applyHadamard(last)
	sv.applyNotAll()
	sv.ApplyHadamardAll()

	// Cancel the circuit's global −1 phase.
	for i := range sv.amps {
		sv.amps[i] = -sv.amps[i]
	}
	return nil
}
