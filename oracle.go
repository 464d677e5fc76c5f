package qamp

import "fmt"

/*
Oracle is the diagonal unitary that marks a single basis state: identity
everywhere except a sign flip at the marked index. It is a configuration
value fixed at construction; applying it mutates only the target vector.
*/
type Oracle struct {
	qubits int
	marked int
}

// NewOracle builds an oracle for an n-qubit register with one marked index.
func NewOracle(qubits, marked int) (*Oracle, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, qubits)
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrWidthTooLarge, qubits, MaxQubits)
	}
	if marked < 0 || marked >= 1<<qubits {
		return nil, fmt.Errorf("%w: marked index %d, size %d", ErrIndexOutOfRange, marked, 1<<qubits)
	}
	return &Oracle{qubits: qubits, marked: marked}, nil
}

// Marked returns the marked basis index.
func (o *Oracle) Marked() int { return o.marked }

// Apply flips the sign of the marked amplitude.
func (o *Oracle) Apply(sv *StateVector) error {
	if sv.Qubits() != o.qubits {
		return fmt.Errorf("%w: oracle built for %d qubits, vector has %d", ErrInvalidWidth, o.qubits, sv.Qubits())
	}
	return sv.ApplyPhaseFlip(o.marked)
}
