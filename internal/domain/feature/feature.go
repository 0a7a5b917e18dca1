// Package feature builds the named feature set scored by the calibrated
// classifier and reconciles it with the classifier's expected input width.
package feature

import (
	"math"

	"github.com/antonypamo/savant-real/internal/domain/signal"
)

// Phi is a fixed constant (1 - e^-1) carried as a feature for classifier
// compatibility; it is not derived from the input.
const Phi = 0.6321205588

// CanonicalCount is the width of the canonical feature set.
const CanonicalCount = 15

const (
	// coherenceEpsilon keeps the coherence ratio well-defined at zero cosine.
	coherenceEpsilon = 1e-9
	// omegaFloor keeps the angular frequency non-zero at a zero dominant bin.
	omegaFloor = 1e-6
)

// canonicalNames is the feature ordering used when the classifier does not
// declare its own. Order matters for vectorization.
var canonicalNames = []string{
	"semantic_margin",
	"cosine_prompt_answer",
	"token_entropy",
	"dirac_energy",
	"dirac_shell_std",
	"freq_low",
	"freq_mid",
	"freq_high",
	"coherence_ratio",
	"phi",
	"omega",
	"S_RRF",
	"C_RRF",
	"dominant_frequency",
	"Phi1_geometric",
}

// CanonicalNames returns a copy of the canonical feature ordering.
func CanonicalNames() []string {
	names := make([]string, len(canonicalNames))
	copy(names, canonicalNames)
	return names
}

// Set maps feature names to values. Every value is a finite real number for
// finite-valued embeddings; the signal primitives guard the degenerate
// denominators.
type Set map[string]float64

// Extract builds the full named feature set for a (prompt, answer) pair
// given the pair's embeddings. Spectral bands are computed over the answer
// embedding only.
func Extract(prompt, answer string, promptVec, answerVec []float64) Set {
	cos := signal.SafeCosine(promptVec, answerVec)
	margin := cos - 0.5
	entropy := signal.CharEntropy(prompt + answer)
	bands := signal.SpectralBands(answerVec)

	return Set{
		"semantic_margin":      margin,
		"cosine_prompt_answer": cos,
		"token_entropy":        entropy,
		"dirac_energy":         signal.L2Distance(promptVec, answerVec),
		"dirac_shell_std":      signal.AbsDispersion(promptVec) + signal.AbsDispersion(answerVec),
		"freq_low":             bands.Low,
		"freq_mid":             bands.Mid,
		"freq_high":            bands.High,
		"coherence_ratio":      (math.Abs(cos) + coherenceEpsilon) / (1.0 + entropy),
		"phi":                  Phi,
		"omega":                2 * math.Pi * math.Max(omegaFloor, bands.Dominant),
		"S_RRF":                signal.Sigmoid(2 * margin),
		"C_RRF":                1.0 - math.Abs(0.5-cos),
		"dominant_frequency":   bands.Dominant,
		"Phi1_geometric":       signal.Sigmoid(1.5 * cos),
	}
}

// Vectorize orders the set by the given names and reconciles the result to
// exactly expectedLen entries: names missing from the set default to 0,
// short vectors are right-padded with zeros, long vectors are truncated
// from the end. This is the compatibility seam between a versioned feature
// producer and a possibly older trained classifier, never an error.
func Vectorize(s Set, order []string, expectedLen int) []float64 {
	if expectedLen < 0 {
		expectedLen = 0
	}

	vec := make([]float64, 0, len(order))
	for _, name := range order {
		vec = append(vec, s[name])
	}

	if len(vec) >= expectedLen {
		return vec[:expectedLen]
	}

	padded := make([]float64, expectedLen)
	copy(padded, vec)
	return padded
}
