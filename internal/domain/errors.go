package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrClassifierFailure signals that both classifier scoring paths failed.
	ErrClassifierFailure = errors.New("classifier failure")
	// ErrModelNotCalibrated signals a model artifact without probability calibration.
	ErrModelNotCalibrated = errors.New("model not calibrated")
	// ErrMalformedScore signals a classifier response with an unexpected shape.
	ErrMalformedScore = errors.New("malformed classifier score")
)

// ClassifierError wraps ErrClassifierFailure with the underlying causes of
// both scoring paths. Raised only when the probability operation and the
// decision-score fallback both failed.
type ClassifierError struct {
	ProbaErr    error
	DecisionErr error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("%s: predict_proba: %v; decision_function: %v",
		ErrClassifierFailure.Error(), e.ProbaErr, e.DecisionErr)
}

func (e *ClassifierError) Unwrap() error { return ErrClassifierFailure }

// NewClassifierError creates a composite classifier failure.
func NewClassifierError(probaErr, decisionErr error) error {
	return &ClassifierError{ProbaErr: probaErr, DecisionErr: decisionErr}
}
