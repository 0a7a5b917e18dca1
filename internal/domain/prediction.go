package domain

import "github.com/antonypamo/savant-real/internal/domain/feature"

// Prediction is the immutable per-request scoring result: the calibrated
// probability, its derived scalar metrics and the full named feature set.
type Prediction struct {
	PGood    float64
	SRRF     float64
	CRRF     float64
	EPhi     float64
	Cosine   float64
	Phi      float64
	Features feature.Set
}
