// amplifier.go
package qamp

import (
	"fmt"
	"math"

	"github.com/theapemachine/errnie"
)

// Phase tracks a run through its lifecycle.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseSuperposed
	PhaseIterating
	PhaseMeasured
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseSuperposed:
		return "superposed"
	case PhaseIterating:
		return "iterating"
	case PhaseMeasured:
		return "measured"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Iterations returns the optimal amplification count ⌊π/4·√(2^n)⌋ for an
// n-qubit register. Zero is a valid count and degenerates to measuring the
// uniform superposition directly.
func Iterations(qubits int) int {
	states := float64(int(1) << qubits)
	return int(math.Floor(math.Pi / 4 * math.Sqrt(states)))
}

// Outcome is the immutable result of one amplification run.
type Outcome struct {
	Qubits      int
	Marked      int
	Iterations  int
	Index       int
	Probability float64
}

/*
AmplitudeAmplifier drives a full oracle-marked amplification run: ground
state, uniform superposition, the computed number of oracle+diffuser
rounds in that fixed order, then one measurement. The oracle and diffuser
are built once at construction and reused across iterations; the state
vector is allocated fresh for every run.

The probability invariant is checked after the superposition and after
each iteration. A failed check aborts the run with ErrNormalizationDrift,
which IsFatal classifies as an engine fault.
*/
type AmplitudeAmplifier struct {
	qubits     int
	iterations int
	oracle     *Oracle
	diffuser   *Diffuser
	sv         *StateVector
	phase      Phase
}

// NewAmplifier builds an amplifier for an n-qubit register with a single
// marked basis index.
func NewAmplifier(qubits, marked int) (*AmplitudeAmplifier, error) {
	oracle, err := NewOracle(qubits, marked)
	if err != nil {
		return nil, err
	}
	diffuser, err := NewDiffuser(qubits)
	if err != nil {
		return nil, err
	}

	aa := &AmplitudeAmplifier{
		qubits:     qubits,
		iterations: Iterations(qubits),
		oracle:     oracle,
		diffuser:   diffuser,
		phase:      PhaseInit,
	}
	errnie.Info(
		"NewAmplifier - qubits %v, marked %v, iterations %v",
		qubits, marked, aa.iterations,
	)
	return aa, nil
}

// Run executes one full cycle, drawing the outcome stochastically from
// src. A nil source uses the process-wide generator.
func (aa *AmplitudeAmplifier) Run(src RandomSource) (*Outcome, error) {
	return aa.run(func(sv *StateVector) int { return sv.Sample(src) })
}

// RunDeterministic executes one full cycle and takes the argmax outcome
// instead of a stochastic draw.
func (aa *AmplitudeAmplifier) RunDeterministic() (*Outcome, error) {
	return aa.run(func(sv *StateVector) int { return sv.MostLikely() })
}

func (aa *AmplitudeAmplifier) run(measure func(*StateVector) int) (*Outcome, error) {
	aa.phase = PhaseInit
	sv, err := NewStateVector(aa.qubits)
	if err != nil {
		return nil, err
	}
	aa.sv = sv

	aa.phase = PhaseSuperposed
	sv.ApplyHadamardAll()
	if err := sv.CheckNorm(); err != nil {
		return nil, err
	}

	aa.phase = PhaseIterating
	for k := 0; k < aa.iterations; k++ {
		if err := aa.oracle.Apply(sv); err != nil {
			return nil, err
		}
		if err := aa.diffuser.Apply(sv); err != nil {
			return nil, err
		}
		if err := sv.CheckNorm(); err != nil {
			return nil, err
		}
	}

	aa.phase = PhaseMeasured
	index := measure(sv)
	if index < 0 || index >= sv.Size() {
		return nil, fmt.Errorf("%w: measured index %d, size %d", ErrIndexOutOfRange, index, sv.Size())
	}
	probability := sv.Probabilities()[index]

	aa.phase = PhaseDone
	return &Outcome{
		Qubits:      aa.qubits,
		Marked:      aa.oracle.Marked(),
		Iterations:  aa.iterations,
		Index:       index,
		Probability: probability,
	}, nil
}

// Phase returns the lifecycle position of the most recent run.
func (aa *AmplitudeAmplifier) Phase() Phase { return aa.phase }

// TopStates returns the k most probable basis states of the most recent
// run's final vector, or nil before any run has completed.
func (aa *AmplitudeAmplifier) TopStates(k int) []BasisState {
	if aa.sv == nil {
		return nil
	}
	return aa.sv.TopStates(k)
}
