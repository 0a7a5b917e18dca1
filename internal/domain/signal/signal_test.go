package signal

import (
	"math"
	"strings"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSigmoid_Saturation(t *testing.T) {
	if got := Sigmoid(-1000); got != 0.0 {
		t.Errorf("Sigmoid(-1000) = %v, want 0.0", got)
	}
	if got := Sigmoid(1000); got != 1.0 {
		t.Errorf("Sigmoid(1000) = %v, want 1.0", got)
	}
	if got := Sigmoid(0); got != 0.5 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", got)
	}
}

func TestSigmoid_Monotonic(t *testing.T) {
	xs := []float64{-1000, -50, -5, -1, -0.1, 0, 0.1, 1, 5, 50, 1000}
	for i := 1; i < len(xs); i++ {
		lo, hi := Sigmoid(xs[i-1]), Sigmoid(xs[i])
		if hi < lo {
			t.Errorf("Sigmoid not monotonic: f(%v)=%v > f(%v)=%v", xs[i-1], lo, xs[i], hi)
		}
	}
}

func TestSigmoid_Bounded(t *testing.T) {
	for _, x := range []float64{-1e9, -2, 0, 2, 1e9} {
		got := Sigmoid(x)
		if got < 0 || got > 1 {
			t.Errorf("Sigmoid(%v) = %v outside [0,1]", x, got)
		}
	}
}

func TestSafeCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"zero left", []float64{0, 0, 0}, []float64{1, 2, 3}, 0.0},
		{"zero right", []float64{1, 2, 3}, []float64{0, 0, 0}, 0.0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0.0},
		{"both empty", nil, nil, 0.0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeCosine(tt.a, tt.b)
			if !almostEqual(got, tt.want, tol) {
				t.Errorf("SafeCosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafeCosine_Range(t *testing.T) {
	a := []float64{0.3, -1.2, 4.5, 0.01}
	b := []float64{-2.2, 0.9, 1.1, -7.3}
	got := SafeCosine(a, b)
	if got < -1-tol || got > 1+tol {
		t.Errorf("SafeCosine() = %v outside [-1,1]", got)
	}
}

func TestCharEntropy(t *testing.T) {
	if got := CharEntropy(""); got != 0.0 {
		t.Errorf("CharEntropy(\"\") = %v, want 0.0", got)
	}

	// Single repeated symbol: non-negative and approaches 0.
	for _, s := range []string{"a", "aa", strings.Repeat("a", 1000)} {
		got := CharEntropy(s)
		if got < 0 {
			t.Errorf("CharEntropy(%q) = %v, want >= 0", s, got)
		}
		if got > 1e-9 {
			t.Errorf("CharEntropy(%q) = %v, want ~0", s, got)
		}
	}

	// Uniform distinct characters beat a single-character string.
	uniform := CharEntropy("abcd")
	single := CharEntropy("aaaa")
	if uniform <= single {
		t.Errorf("uniform entropy %v should exceed single-char entropy %v", uniform, single)
	}

	// Four uniform symbols: H = ln(4).
	if !almostEqual(uniform, math.Log(4), 1e-6) {
		t.Errorf("CharEntropy(\"abcd\") = %v, want %v", uniform, math.Log(4))
	}
}

func TestCharEntropy_Unicode(t *testing.T) {
	// Entropy counts runes, not bytes: two distinct runes, uniform.
	got := CharEntropy("日本")
	if !almostEqual(got, math.Log(2), 1e-6) {
		t.Errorf("CharEntropy(\"日本\") = %v, want %v", got, math.Log(2))
	}
}

func TestSpectralBands_Empty(t *testing.T) {
	b := SpectralBands(nil)
	if b.Low != 0 || b.Mid != 0 || b.High != 0 || b.Dominant != 0 {
		t.Errorf("SpectralBands(nil) = %+v, want all zeros", b)
	}
}

func TestSpectralBands_ZeroVector(t *testing.T) {
	b := SpectralBands(make([]float64, 64))
	if b.Low != 0 || b.Mid != 0 || b.High != 0 || b.Dominant != 0 {
		t.Errorf("SpectralBands(zeros) = %+v, want all zeros", b)
	}
}

func TestSpectralBands_ShortVector(t *testing.T) {
	// Length 2 gives 2 one-sided bins: Mid and High default to 0.
	b := SpectralBands([]float64{1, 2})
	if b.Mid != 0 || b.High != 0 {
		t.Errorf("short vector: Mid=%v High=%v, want 0, 0", b.Mid, b.High)
	}
	if b.Low <= 0 {
		t.Errorf("short vector: Low = %v, want > 0", b.Low)
	}
}

func TestSpectralBands_ConstantSignal(t *testing.T) {
	// A constant signal concentrates all energy in the DC bin.
	v := make([]float64, 32)
	for i := range v {
		v[i] = 1
	}
	b := SpectralBands(v)
	if b.Dominant != 0 {
		t.Errorf("constant signal: Dominant = %v, want 0", b.Dominant)
	}
	if b.Low <= b.High {
		t.Errorf("constant signal: Low %v should exceed High %v", b.Low, b.High)
	}
}

func TestSpectralBands_HighFrequencySignal(t *testing.T) {
	// Nyquist-rate alternation pushes the dominant bin to the top: index
	// n/2 of n/2+1 bins, normalized to 1.
	v := make([]float64, 32)
	for i := range v {
		if i%2 == 0 {
			v[i] = 1
		} else {
			v[i] = -1
		}
	}
	b := SpectralBands(v)
	if !almostEqual(b.Dominant, 1.0, tol) {
		t.Errorf("alternating signal: Dominant = %v, want 1.0", b.Dominant)
	}
}

func TestSpectralBands_DominantNormalized(t *testing.T) {
	v := []float64{0.5, -1.25, 3, 0.25, -0.75, 2, 1, -0.5}
	b := SpectralBands(v)
	if b.Dominant < 0 || b.Dominant > 1 {
		t.Errorf("Dominant = %v outside [0,1]", b.Dominant)
	}
}

func TestL2Distance(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 3}
	if got := L2Distance(a, b); got != 0 {
		t.Errorf("L2Distance(identical) = %v, want 0", got)
	}

	got := L2Distance([]float64{0, 0}, []float64{3, 4})
	if !almostEqual(got, 5, tol) {
		t.Errorf("L2Distance(3-4-5) = %v, want 5", got)
	}
}

func TestAbsDispersion(t *testing.T) {
	if got := AbsDispersion(nil); got != 0 {
		t.Errorf("AbsDispersion(nil) = %v, want 0", got)
	}
	if got := AbsDispersion([]float64{2}); got != 0 {
		t.Errorf("AbsDispersion(single) = %v, want 0", got)
	}
	// |v| = {1, 3}: population std = 1.
	got := AbsDispersion([]float64{-1, 3})
	if !almostEqual(got, 1, tol) {
		t.Errorf("AbsDispersion({-1,3}) = %v, want 1", got)
	}
	// Sign must not matter.
	if AbsDispersion([]float64{-1, -3}) != AbsDispersion([]float64{1, 3}) {
		t.Error("AbsDispersion should be sign-invariant")
	}
}
