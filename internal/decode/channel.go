// Package decode implements dynamic-programming decoding of a binarized
// text line against a trained template library. A line is modeled as the
// output of a noisy channel fed an unknown left-to-right template sequence;
// the decoder recovers the maximum a posteriori sequence with a Viterbi
// sweep over horizontal pixel positions.
package decode

import "math"

// ChannelModel selects the pixel-corruption model used to turn template
// overlap counts into additive log scores. Only the two-level model exists
// today; the variant keeps room for richer models without touching callers.
type ChannelModel int

const (
	// TwoLevel is the default channel: one fidelity constant for
	// background pixels and one for foreground pixels.
	TwoLevel ChannelModel = iota
)

// Two-level channel fidelity constants: the probability that a background
// (alpha0) or foreground (alpha1) template pixel survives uncorrupted.
const (
	alpha0 = 0.95
	alpha1 = 0.90
)

// Coefficients derives the per-template score coefficients for the model.
// A template placement scores beta*overlap + gamma*area; beta rewards
// matched foreground, gamma is the per-pixel bias of committing to the
// template at all.
func (m ChannelModel) Coefficients() (beta, gamma float64) {
	switch m {
	case TwoLevel:
		beta = math.Log(alpha1) - math.Log(1-alpha1)
		gamma = math.Log(alpha0) - math.Log(1-alpha0) + math.Log(1-alpha1) - math.Log(alpha1)
		return beta, gamma
	default:
		panic("decode: unknown channel model")
	}
}

// String returns the model name.
func (m ChannelModel) String() string {
	switch m {
	case TwoLevel:
		return "two-level"
	default:
		return "unknown"
	}
}
