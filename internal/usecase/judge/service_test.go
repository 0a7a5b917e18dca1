package judge

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/antonypamo/savant-real/internal/domain"
	"github.com/antonypamo/savant-real/internal/domain/feature"
	"github.com/antonypamo/savant-real/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterJudgeMetrics()
	m.Run()
}

// newSvc builds a service with one embedder chain for both roles.
func newSvc(emb Embedder, clf domain.Classifier) *Service {
	return New(emb, emb, clf, zap.NewNop())
}

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float64{1, 0, 0, 0}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

// probaClassifier answers through the calibrated probability path.
type probaClassifier struct {
	pGood float64
}

func (c *probaClassifier) Name() string { return "proba" }

func (c *probaClassifier) PredictProba(vectors [][]float64) ([][]float64, error) {
	rows := make([][]float64, len(vectors))
	for i := range vectors {
		rows[i] = []float64{1 - c.pGood, c.pGood}
	}
	return rows, nil
}

// decisionClassifier only exposes raw margins.
type decisionClassifier struct {
	margin float64
}

func (c *decisionClassifier) Name() string { return "decision" }

func (c *decisionClassifier) DecisionFunction(vectors [][]float64) ([]float64, error) {
	margins := make([]float64, len(vectors))
	for i := range margins {
		margins[i] = c.margin
	}
	return margins, nil
}

// brokenClassifier fails both scoring paths.
type brokenClassifier struct{}

func (c *brokenClassifier) Name() string { return "broken" }

func (c *brokenClassifier) PredictProba([][]float64) ([][]float64, error) {
	return nil, errors.New("proba backend down")
}

func (c *brokenClassifier) DecisionFunction([][]float64) ([]float64, error) {
	return nil, errors.New("decision backend down")
}

// namedClassifier declares its own feature ordering and width.
type namedClassifier struct {
	probaClassifier
	names []string
	seen  [][]float64
}

func (c *namedClassifier) FeatureNames() []string { return c.names }
func (c *namedClassifier) InputDim() int          { return len(c.names) }

func (c *namedClassifier) PredictProba(vectors [][]float64) ([][]float64, error) {
	c.seen = vectors
	return c.probaClassifier.PredictProba(vectors)
}

func TestPredict_ProbaPath(t *testing.T) {
	svc := newSvc(&fakeEmbedder{}, &probaClassifier{pGood: 0.83})

	pred, err := svc.Predict(context.Background(), "what is go?", "a language")
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if pred.PGood != 0.83 {
		t.Errorf("PGood = %v, want 0.83", pred.PGood)
	}
	if pred.SRRF != pred.PGood {
		t.Errorf("SRRF = %v, want PGood %v", pred.SRRF, pred.PGood)
	}
	if len(pred.Features) != feature.CanonicalCount {
		t.Errorf("feature count = %d, want %d", len(pred.Features), feature.CanonicalCount)
	}
	if pred.Phi != feature.Phi {
		t.Errorf("Phi = %v, want %v", pred.Phi, feature.Phi)
	}
}

func TestPredict_DecisionFallback(t *testing.T) {
	svc := newSvc(&fakeEmbedder{}, &decisionClassifier{margin: 2.0})

	pred, err := svc.Predict(context.Background(), "p", "a")
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	// sigmoid(2.0)
	const want = 0.8807970779778823
	if math.Abs(pred.PGood-want) > 1e-9 {
		t.Errorf("PGood = %v, want sigmoid(2.0) = %v", pred.PGood, want)
	}
}

func TestPredict_BothPathsFail(t *testing.T) {
	svc := newSvc(&fakeEmbedder{}, &brokenClassifier{})

	_, err := svc.Predict(context.Background(), "p", "a")
	if !errors.Is(err, domain.ErrClassifierFailure) {
		t.Errorf("Predict() = %v, want ErrClassifierFailure", err)
	}
}

func TestPredict_EmbedderFailure(t *testing.T) {
	svc := newSvc(&fakeEmbedder{err: domain.ErrEmbeddingProviderError},
		&probaClassifier{pGood: 0.5})

	_, err := svc.Predict(context.Background(), "p", "a")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("Predict() = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestPredict_IdenticalTexts(t *testing.T) {
	vec := []float64{0.2, 0.8, -0.3, 1.1}
	emb := &fakeEmbedder{vectors: map[string][]float64{"same": vec}}
	svc := newSvc(emb, &probaClassifier{pGood: 0.5})

	pred, err := svc.Predict(context.Background(), "same", "same")
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if math.Abs(pred.Cosine-1.0) > 1e-9 {
		t.Errorf("Cosine = %v, want 1.0 for identical texts", pred.Cosine)
	}
	if math.Abs(pred.EPhi-0.75) > 1e-9 {
		t.Errorf("EPhi = %v, want 0.25 + 0.5*1.0", pred.EPhi)
	}
	if math.Abs(pred.CRRF-0.5) > 1e-9 {
		t.Errorf("CRRF = %v, want 0.5", pred.CRRF)
	}
}

func TestNew_DeclaredOrderingDrivesVectorization(t *testing.T) {
	clf := &namedClassifier{
		probaClassifier: probaClassifier{pGood: 0.5},
		names:           []string{"cosine_prompt_answer", "phi"},
	}
	svc := newSvc(&fakeEmbedder{}, clf)

	if got := svc.ExpectedFeatures(); got != 2 {
		t.Fatalf("ExpectedFeatures() = %d, want 2", got)
	}
	order := svc.FeatureOrder()
	if len(order) != 2 || order[0] != "cosine_prompt_answer" || order[1] != "phi" {
		t.Fatalf("FeatureOrder() = %v", order)
	}

	if _, err := svc.Predict(context.Background(), "p", "a"); err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if len(clf.seen) != 1 || len(clf.seen[0]) != 2 {
		t.Fatalf("classifier saw %v, want one 2-wide vector", clf.seen)
	}
	if clf.seen[0][1] != feature.Phi {
		t.Errorf("second slot = %v, want phi constant %v", clf.seen[0][1], feature.Phi)
	}
}

func TestNew_DefaultsToCanonicalOrdering(t *testing.T) {
	svc := newSvc(&fakeEmbedder{}, &probaClassifier{pGood: 0.5})

	if got := svc.ExpectedFeatures(); got != feature.CanonicalCount {
		t.Errorf("ExpectedFeatures() = %d, want %d", got, feature.CanonicalCount)
	}
	order := svc.FeatureOrder()
	canonical := feature.CanonicalNames()
	for i := range canonical {
		if order[i] != canonical[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], canonical[i])
		}
	}
}
