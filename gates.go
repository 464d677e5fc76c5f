package qamp

import "math"

// hFactor is the Hadamard normalization 1/√2.
var hFactor = complex(1.0/math.Sqrt2, 0)

// applyHadamard applies a single-qubit Hadamard to qubit q. Basis indices
// are paired by the target bit; each pair is mixed once, in place.
func (sv *StateVector) applyHadamard(q int) {
	// H = 1/√2 * [1  1]
	//            [1 -1]
	bit := 1 << q
	for i := range sv.amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := sv.amps[i], sv.amps[j]
			sv.amps[i] = hFactor * (a0 + a1)
			sv.amps[j] = hFactor * (a0 - a1)
		}
	}
}

// applyNot applies a Pauli-X to qubit q, swapping each pair of basis
// amplitudes that differ only in the target bit.
func (sv *StateVector) applyNot(q int) {
	bit := 1 << q
	for i := range sv.amps {
		if i&bit == 0 {
			j := i | bit
			sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
		}
	}
}

// applyNotAll applies Pauli-X to every qubit in the register.
func (sv *StateVector) applyNotAll() {
	for q := 0; q < sv.qubits; q++ {
		sv.applyNot(q)
	}
}

// applyMultiControlledNot flips the target qubit on those basis states where
// every other qubit is 1. With a single qubit there are no controls and the
// gate degenerates to a plain X.
func (sv *StateVector) applyMultiControlledNot(target int) {
	bit := 1 << target
	controls := (1<<sv.qubits - 1) &^ bit
	for i := range sv.amps {
		if i&controls == controls && i&bit == 0 {
			j := i | bit
			sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
		}
	}
}
