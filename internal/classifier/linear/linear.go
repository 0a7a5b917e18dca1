// Package linear adapts a binary linear classifier exported as a JSON
// artifact (coefficients, intercept, class order, optional feature-name
// ordering) to the domain classifier capabilities.
package linear

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"github.com/antonypamo/savant-real/internal/domain"
	"github.com/antonypamo/savant-real/internal/domain/signal"
)

var (
	_ domain.Classifier            = (*Model)(nil)
	_ domain.ProbabilityClassifier = (*Model)(nil)
	_ domain.DecisionClassifier    = (*Model)(nil)
	_ domain.InputDimensioner      = (*Model)(nil)
	_ domain.FeatureNamer          = (*Model)(nil)
)

// artifact mirrors the exported model fields.
type artifact struct {
	Model        string      `json:"model"`
	Classes      []int       `json:"classes"`
	Coef         [][]float64 `json:"coef"`
	Intercept    []float64   `json:"intercept"`
	FeatureNames []string    `json:"feature_names"`
	Calibrated   *bool       `json:"calibrated"`
}

// Model is a binary linear classifier. The decision function is the raw
// margin w·x+b; when the artifact is calibrated, PredictProba maps the
// margin through the logistic function. The positive class occupies the
// second probability column.
type Model struct {
	name         string
	weights      []float64
	intercept    float64
	featureNames []string
	calibrated   bool
}

// Load reads and validates a model artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}

	m, err := fromArtifact(a)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	if m.name == "" {
		m.name = filepath.Base(path)
	}
	return m, nil
}

func fromArtifact(a artifact) (*Model, error) {
	if len(a.Coef) != 1 {
		return nil, fmt.Errorf("expected exactly 1 coefficient row for a binary model, got %d", len(a.Coef))
	}
	if len(a.Coef[0]) == 0 {
		return nil, fmt.Errorf("coefficient row is empty")
	}
	if len(a.Intercept) != 1 {
		return nil, fmt.Errorf("expected exactly 1 intercept, got %d", len(a.Intercept))
	}
	if len(a.Classes) != 0 && len(a.Classes) != 2 {
		return nil, fmt.Errorf("expected 2 classes, got %d", len(a.Classes))
	}
	if len(a.FeatureNames) != 0 && len(a.FeatureNames) != len(a.Coef[0]) {
		return nil, fmt.Errorf("feature_names length %d does not match coefficient width %d",
			len(a.FeatureNames), len(a.Coef[0]))
	}

	calibrated := true
	if a.Calibrated != nil {
		calibrated = *a.Calibrated
	}

	return &Model{
		name:         a.Model,
		weights:      a.Coef[0],
		intercept:    a.Intercept[0],
		featureNames: a.FeatureNames,
		calibrated:   calibrated,
	}, nil
}

// Name implements domain.Classifier.
func (m *Model) Name() string { return m.name }

// InputDim reports the trained feature-vector width.
func (m *Model) InputDim() int { return len(m.weights) }

// FeatureNames reports the trained feature ordering; empty when the
// artifact did not declare one.
func (m *Model) FeatureNames() []string {
	if len(m.featureNames) == 0 {
		return nil
	}
	names := make([]string, len(m.featureNames))
	copy(names, m.featureNames)
	return names
}

// DecisionFunction returns the raw margin w·x+b per input vector.
func (m *Model) DecisionFunction(vectors [][]float64) ([]float64, error) {
	margins := make([]float64, len(vectors))
	for i, vec := range vectors {
		if len(vec) != len(m.weights) {
			return nil, fmt.Errorf("vector %d has width %d, model expects %d", i, len(vec), len(m.weights))
		}
		margins[i] = floats.Dot(m.weights, vec) + m.intercept
	}
	return margins, nil
}

// PredictProba returns [class0_prob, class1_prob] rows. Fails for
// uncalibrated artifacts, which triggers the caller's decision-score
// fallback.
func (m *Model) PredictProba(vectors [][]float64) ([][]float64, error) {
	if !m.calibrated {
		return nil, fmt.Errorf("%s: %w", m.name, domain.ErrModelNotCalibrated)
	}

	margins, err := m.DecisionFunction(vectors)
	if err != nil {
		return nil, err
	}

	probs := make([][]float64, len(margins))
	for i, margin := range margins {
		p := signal.Sigmoid(margin)
		probs[i] = []float64{1 - p, p}
	}
	return probs, nil
}
