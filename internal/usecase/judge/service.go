// Package judge implements the scoring pipeline: embed the pair, build
// the feature set, vectorize it to the classifier's width and classify.
package judge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/antonypamo/savant-real/internal/domain"
	"github.com/antonypamo/savant-real/internal/domain/feature"
	"github.com/antonypamo/savant-real/internal/domain/signal"
	"github.com/antonypamo/savant-real/internal/metrics"
)

// Service scores (prompt, answer) pairs with an embedding provider and a
// calibrated classifier. Prompt and answer texts run through separate
// embedder chains so per-role instruction prefixes apply; both fields
// usually hold the same chain.
type Service struct {
	promptEmbed Embedder
	answerEmbed Embedder
	classifier  domain.Classifier
	order       []string
	width       int
	logger      *zap.Logger
}

// New creates a judge service. The feature ordering and input width are
// resolved from the classifier once at construction: classifiers that
// declare their trained feature names and input dimension drive both,
// everything else falls back to the canonical feature set.
func New(promptEmbed, answerEmbed Embedder, classifier domain.Classifier, logger *zap.Logger) *Service {
	order := feature.CanonicalNames()
	if namer, ok := classifier.(domain.FeatureNamer); ok {
		if declared := namer.FeatureNames(); len(declared) > 0 {
			order = declared
		}
	}

	width := len(order)
	if dim, ok := classifier.(domain.InputDimensioner); ok {
		if d := dim.InputDim(); d > 0 {
			width = d
		}
	}

	return &Service{
		promptEmbed: promptEmbed,
		answerEmbed: answerEmbed,
		classifier:  classifier,
		order:       order,
		width:       width,
		logger:      logger,
	}
}

// FeatureOrder returns the feature ordering used for vectorization.
func (s *Service) FeatureOrder() []string {
	order := make([]string, len(s.order))
	copy(order, s.order)
	return order
}

// ExpectedFeatures returns the classifier's input width.
func (s *Service) ExpectedFeatures() int { return s.width }

// ClassifierName returns the loaded classifier's name.
func (s *Service) ClassifierName() string { return s.classifier.Name() }

// Predict scores a (prompt, answer) pair.
func (s *Service) Predict(ctx context.Context, prompt, answer string) (domain.Prediction, error) {
	start := time.Now()

	pred, err := s.predict(ctx, prompt, answer)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PredictionsTotal.WithLabelValues(status).Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	return pred, err
}

func (s *Service) predict(ctx context.Context, prompt, answer string) (domain.Prediction, error) {
	promptRes, err := s.promptEmbed.Embed(ctx, prompt)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("embed prompt: %w", err)
	}
	answerRes, err := s.answerEmbed.Embed(ctx, answer)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("embed answer: %w", err)
	}

	features := feature.Extract(prompt, answer, promptRes.Embedding, answerRes.Embedding)
	vec := feature.Vectorize(features, s.order, s.width)

	pGood, err := s.classify(vec)
	if err != nil {
		return domain.Prediction{}, err
	}

	return domain.Prediction{
		PGood:    pGood,
		SRRF:     pGood,
		CRRF:     features["C_RRF"],
		EPhi:     0.25 + 0.5*features["cosine_prompt_answer"],
		Cosine:   features["cosine_prompt_answer"],
		Phi:      feature.Phi,
		Features: features,
	}, nil
}

// classify resolves the positive-class probability: the calibrated
// probability path is preferred, the raw decision score mapped through
// the logistic function is the fallback. Both failing is a classifier
// failure carrying both causes.
func (s *Service) classify(vec []float64) (float64, error) {
	var probaErr error

	if prob, ok := s.classifier.(domain.ProbabilityClassifier); ok {
		rows, err := prob.PredictProba([][]float64{vec})
		if err == nil && len(rows) == 1 && len(rows[0]) == 2 {
			metrics.ClassifierFallbackTotal.WithLabelValues("proba").Inc()
			return rows[0][1], nil
		}
		if err == nil {
			err = fmt.Errorf("%w: unexpected probability shape", domain.ErrMalformedScore)
		}
		probaErr = err
	} else {
		probaErr = fmt.Errorf("classifier %s does not expose probabilities", s.classifier.Name())
	}

	if dec, ok := s.classifier.(domain.DecisionClassifier); ok {
		margins, err := dec.DecisionFunction([][]float64{vec})
		if err == nil && len(margins) == 1 {
			s.logger.Debug("Falling back to decision score",
				zap.String("classifier", s.classifier.Name()),
				zap.NamedError("proba_error", probaErr),
			)
			metrics.ClassifierFallbackTotal.WithLabelValues("decision").Inc()
			return signal.Sigmoid(margins[0]), nil
		}
		if err == nil {
			err = fmt.Errorf("%w: unexpected margin shape", domain.ErrMalformedScore)
		}
		return 0, domain.NewClassifierError(probaErr, err)
	}

	return 0, domain.NewClassifierError(probaErr,
		fmt.Errorf("classifier %s does not expose decision scores", s.classifier.Name()))
}
