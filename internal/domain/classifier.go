package domain

// Classifier is the calibrated scoring model contract. A concrete
// classifier exposes at least one of ProbabilityClassifier or
// DecisionClassifier; consumers assert the optional capabilities at
// runtime, the same way optional embedder capabilities are asserted.
type Classifier interface {
	Name() string
}

// ProbabilityClassifier scores feature-vector batches as per-class
// probabilities. Each row is [class0_prob, class1_prob].
type ProbabilityClassifier interface {
	PredictProba(vectors [][]float64) ([][]float64, error)
}

// DecisionClassifier scores feature-vector batches as raw decision margins
// (distance from the separating hyperplane, unbounded).
type DecisionClassifier interface {
	DecisionFunction(vectors [][]float64) ([]float64, error)
}

// InputDimensioner reports the feature-vector width the model was trained
// on. Zero means unknown.
type InputDimensioner interface {
	InputDim() int
}

// FeatureNamer reports the feature-name ordering the model was trained on.
// An empty slice means unknown.
type FeatureNamer interface {
	FeatureNames() []string
}
