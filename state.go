package qamp

import "sort"

/*
BasisState is a diagnostic view of one basis state: its index, its complex
amplitude, and the probability mass it carries.
*/
type BasisState struct {
	Index       int
	Amplitude   complex128
	Probability float64
}

// TopStates returns the k most probable basis states in descending
// probability order; equal probabilities order by ascending index. Asking
// for more states than the register holds returns all of them.
func (sv *StateVector) TopStates(k int) []BasisState {
	if k < 0 {
		k = 0
	}

	probs := sv.Probabilities()
	states := make([]BasisState, len(sv.amps))
	for i, amp := range sv.amps {
		states[i] = BasisState{Index: i, Amplitude: amp, Probability: probs[i]}
	}

	sort.Slice(states, func(i, j int) bool {
		if states[i].Probability != states[j].Probability {
			return states[i].Probability > states[j].Probability
		}
		return states[i].Index < states[j].Index
	})

	if k < len(states) {
		states = states[:k]
	}
	return states
}
