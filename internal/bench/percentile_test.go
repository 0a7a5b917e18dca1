package bench

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		p    float64
		want float64
	}{
		{"empty", nil, 50, 0},
		{"single", []float64{3.5}, 99, 3.5},
		{"median even", []float64{1, 2, 3, 4}, 50, 2.5},
		{"median odd", []float64{1, 2, 3}, 50, 2},
		{"p0 is min", []float64{5, 1, 3}, 0, 1},
		{"p100 is max", []float64{5, 1, 3}, 100, 5},
		{"interpolated", []float64{10, 20, 30, 40}, 75, 32.5},
		{"unsorted input", []float64{40, 10, 30, 20}, 75, 32.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.xs, tt.p)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.xs, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Percentile(xs, 50)
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Errorf("input mutated: %v", xs)
	}
}
