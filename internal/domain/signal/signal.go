// Package signal holds the pure numeric primitives behind feature
// extraction: bounded sigmoid, zero-safe cosine similarity, character
// entropy and one-sided spectrum band statistics.
package signal

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// entropyEpsilon keeps the logarithm defined on degenerate single-symbol
// distributions.
const entropyEpsilon = 1e-12

// Sigmoid is the logistic function 1/(1+e^-x). math.Exp saturates to +Inf
// instead of overflowing, so the result is exactly 0 for large negative x
// and 1 for large positive x. Output is always in [0,1].
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SafeCosine returns the cosine similarity of two equal-length vectors,
// in [-1,1]. Returns 0 when either vector has zero norm (undefined
// direction) or the lengths differ. Never divides by zero.
func SafeCosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// CharEntropy returns the Shannon entropy (natural log) of the empirical
// character distribution of text. Characters, not word tokens. Returns 0
// for an empty string; the result is never negative.
func CharEntropy(text string) float64 {
	if text == "" {
		return 0
	}

	counts := make(map[rune]int)
	total := 0
	for _, r := range text {
		counts[r]++
		total++
	}

	ent := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		ent -= p * math.Log(p+entropyEpsilon)
	}
	// The epsilon inside the log pushes a single-symbol distribution a hair
	// below zero; entropy is non-negative by contract.
	if ent < 0 {
		ent = 0
	}
	return ent
}

// Bands holds one-sided magnitude-spectrum statistics of a real vector.
// Low/Mid/High are mean magnitudes of the first sixth, sixth-to-third and
// remaining bins. Dominant is the argmax bin index normalized to [0,1].
type Bands struct {
	Low      float64
	Mid      float64
	High     float64
	Dominant float64
}

// SpectralBands computes the magnitude of the one-sided DFT of v and
// partitions it into three contiguous bands. Vectors producing fewer than
// three usable bins report Mid and High as 0 rather than failing; an empty
// input reports all zeros.
func SpectralBands(v []float64) Bands {
	if len(v) == 0 {
		return Bands{}
	}

	fft := fourier.NewFFT(len(v))
	coeffs := fft.Coefficients(nil, v)

	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag[i] = cmplx.Abs(c)
	}

	n := len(mag)
	b := Bands{Low: mean(mag[:max(1, n/6)])}
	if n >= 3 {
		b.Mid = mean(mag[max(1, n/6):max(2, n/3)])
		b.High = mean(mag[max(2, n/3):])
	}
	if n > 1 {
		b.Dominant = float64(floats.MaxIdx(mag)) / float64(n-1)
	}
	return b
}

// L2Distance returns the Euclidean distance between two equal-length
// vectors.
func L2Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// AbsDispersion returns the population standard deviation of the
// per-coordinate absolute magnitudes of v. Returns 0 for an empty vector.
func AbsDispersion(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	abs := make([]float64, len(v))
	for i, x := range v {
		abs[i] = math.Abs(x)
	}
	return math.Sqrt(stat.PopVariance(abs, nil))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
