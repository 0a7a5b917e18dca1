package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/antonypamo/savant-real/internal/domain"
	"github.com/antonypamo/savant-real/internal/metrics"
	healthuc "github.com/antonypamo/savant-real/internal/usecase/health"
	judgeuc "github.com/antonypamo/savant-real/internal/usecase/judge"
)

func TestMain(m *testing.M) {
	metrics.RegisterJudgeMetrics()
	m.Run()
}

// --- Fakes ---

type stubEmbedder struct {
	err error
}

func (f *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float64{1, 0, 0.5, 0}, TotalTokens: 2}, nil
}

func (f *stubEmbedder) HealthCheck(_ context.Context) error { return nil }

type stubClassifier struct {
	pGood float64
	err   error
}

func (c *stubClassifier) Name() string { return "stub" }

func (c *stubClassifier) PredictProba(vectors [][]float64) ([][]float64, error) {
	if c.err != nil {
		return nil, c.err
	}
	rows := make([][]float64, len(vectors))
	for i := range rows {
		rows[i] = []float64{1 - c.pGood, c.pGood}
	}
	return rows, nil
}

func newTestServer(embErr, clfErr error) *Server {
	emb := &stubEmbedder{err: embErr}
	judge := judgeuc.New(emb, emb, &stubClassifier{pGood: 0.9, err: clfErr}, zap.NewNop())
	health := healthuc.New(nil, emb, judge)
	return NewServer(judge, health, "openai/text-embedding-3-small", zap.NewNop())
}

func postJudge(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/judge", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Judge(rec, req)
	return rec
}

// --- Tests ---

func TestJudge_Success(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJudge(t, s, `{"prompt":"what is go?","answer":"a programming language"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp judgeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Scores.PGood != 0.9 {
		t.Errorf("p_good = %v, want 0.9", resp.Scores.PGood)
	}
	if resp.Scores.SRRF != resp.Scores.PGood {
		t.Errorf("SRRF = %v, want p_good", resp.Scores.SRRF)
	}
	if len(resp.Features) != 15 {
		t.Errorf("feature count = %d, want 15", len(resp.Features))
	}
	if resp.Meta.Classifier != "stub" || resp.Meta.ExpectedFeatures != 15 {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if resp.Meta.Embedder != "openai/text-embedding-3-small" {
		t.Errorf("embedder = %q", resp.Meta.Embedder)
	}
	if resp.Meta.LatencySeconds < 0 {
		t.Errorf("latency_s = %v, want non-negative", resp.Meta.LatencySeconds)
	}
}

func TestJudge_ScoreWireKeys(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := postJudge(t, s, `{"prompt":"p","answer":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	for _, key := range []string{"p_good", "SRRF", "CRRF", "E_phi", "cosine", "phi"} {
		if _, ok := envelope.Scores[key]; !ok {
			t.Errorf("scores missing wire key %q, got %v", key, envelope.Scores)
		}
	}
	// The underscored spellings are feature names, not score keys.
	for _, key := range []string{"S_RRF", "C_RRF"} {
		if _, ok := envelope.Scores[key]; ok {
			t.Errorf("scores must not carry key %q", key)
		}
	}
}

func TestJudge_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"empty prompt", `{"prompt":"","answer":"a"}`},
		{"empty answer", `{"prompt":"p","answer":""}`},
		{"missing fields", `{}`},
	}

	s := newTestServer(nil, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJudge(t, s, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestJudge_EmbeddingProviderError(t *testing.T) {
	s := newTestServer(domain.ErrEmbeddingProviderError, nil)

	rec := postJudge(t, s, `{"prompt":"p","answer":"a"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != CodeEmbeddingProviderError {
		t.Errorf("code = %q, want %q", resp.Code, CodeEmbeddingProviderError)
	}
}

func TestJudge_QuotaExceeded(t *testing.T) {
	s := newTestServer(domain.ErrEmbeddingQuotaExceeded, nil)

	rec := postJudge(t, s, `{"prompt":"p","answer":"a"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}
}

func TestJudge_ClassifierFailure(t *testing.T) {
	s := newTestServer(nil, errors.New("model backend down"))

	rec := postJudge(t, s, `{"prompt":"p","answer":"a"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != CodeClassifierFailure {
		t.Errorf("code = %q, want %q", resp.Code, CodeClassifierFailure)
	}
	if !strings.Contains(resp.Message, "predict_proba") {
		t.Errorf("message %q should carry the proba cause", resp.Message)
	}
}

func TestRoot(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := httptest.NewRecorder()
	s.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp rootResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "savant-judge" || resp.Status != "ok" {
		t.Errorf("root = %q/%q", resp.Name, resp.Status)
	}
	if resp.ExpectedFeatures != 15 {
		t.Errorf("expected_features = %d, want 15", resp.ExpectedFeatures)
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := httptest.NewRecorder()
	s.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["embedding"] != "ok" {
		t.Errorf("embedding check = %q", resp.Checks["embedding"])
	}
	if resp.Classifier != "stub" {
		t.Errorf("classifier = %q", resp.Classifier)
	}
}
