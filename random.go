package qamp

import "math/rand/v2"

// RandomSource supplies the uniform draws consumed by measurement. Any type
// with a Float64 in [0, 1) works; *rand.Rand from math/rand/v2 satisfies it
// directly.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic PCG-backed source. Two sources
// built from the same seed produce identical draw sequences, which is what
// reproducible test runs rely on.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed))
}

// globalSource defers to the process-wide generator.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
