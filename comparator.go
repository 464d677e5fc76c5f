package qamp

import (
	"fmt"
	"math/bits"
)

// MinQubits is the floor on register width for the comparison encoding;
// two qubits are allocated even when the difference would fit in one.
const MinQubits = 2

/*
Comparison carries the verdict and full diagnostics of one comparison run:
the register width and marked index the encoding chose, the iteration
count, and the measured index with its probability mass. Confirmed reports
whether the measurement landed on the marked state.
*/
type Comparison struct {
	A              int64
	B              int64
	GreaterOrEqual bool
	Qubits         int
	Marked         int
	Iterations     int
	Index          int
	Probability    float64
	Confirmed      bool
}

/*
Comparator maps two integers onto an amplification run. The difference
a−b fixes both the register width, max(bitLen(|a−b|), 2), and the marked
index |a−b|.

The verdict is the sign of the difference and never depends on the
measurement; the sampled index is reported purely as diagnostics. Widths
beyond MaxQubits are rejected with ErrWidthTooLarge rather than truncated.
*/
type Comparator struct {
	// Source supplies measurement draws; nil uses the process-wide
	// generator.
	Source RandomSource

	// Deterministic switches measurement to the argmax outcome.
	Deterministic bool
}

// diffMagnitude returns |a−b| and whether a ≥ b. The subtraction runs in
// uint64 space, which keeps extreme pairs such as (MaxInt64, MinInt64)
// exact.
func diffMagnitude(a, b int64) (uint64, bool) {
	if a >= b {
		return uint64(a) - uint64(b), true
	}
	return uint64(b) - uint64(a), false
}

// widthFor returns the register width the encoding assigns to a pair.
func widthFor(a, b int64) int {
	mag, _ := diffMagnitude(a, b)
	width := bits.Len64(mag)
	if width < MinQubits {
		width = MinQubits
	}
	return width
}

// Compare runs one amplification for the pair and returns the verdict
// with full diagnostics.
func (c Comparator) Compare(a, b int64) (*Comparison, error) {
	mag, greaterOrEqual := diffMagnitude(a, b)

	qubits := bits.Len64(mag)
	if qubits < MinQubits {
		qubits = MinQubits
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: |a-b| = %d needs %d qubits, limit %d", ErrWidthTooLarge, mag, qubits, MaxQubits)
	}
	marked := int(mag)

	aa, err := NewAmplifier(qubits, marked)
	if err != nil {
		return nil, err
	}

	var out *Outcome
	if c.Deterministic {
		out, err = aa.RunDeterministic()
	} else {
		out, err = aa.Run(c.Source)
	}
	if err != nil {
		return nil, err
	}

	return &Comparison{
		A:              a,
		B:              b,
		GreaterOrEqual: greaterOrEqual,
		Qubits:         out.Qubits,
		Marked:         out.Marked,
		Iterations:     out.Iterations,
		Index:          out.Index,
		Probability:    out.Probability,
		Confirmed:      out.Index == out.Marked,
	}, nil
}

// CompareGreaterOrEqual reports whether a ≥ b.
func (c Comparator) CompareGreaterOrEqual(a, b int64) (bool, error) {
	cmp, err := c.Compare(a, b)
	if err != nil {
		return false, err
	}
	return cmp.GreaterOrEqual, nil
}

// CompareGreaterOrEqual reports whether a ≥ b with default measurement
// settings.
func CompareGreaterOrEqual(a, b int64) (bool, error) {
	return Comparator{}.CompareGreaterOrEqual(a, b)
}
