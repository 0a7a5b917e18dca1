// Package chi exposes the scoring service over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/antonypamo/savant-real/internal/domain"
	"github.com/antonypamo/savant-real/internal/version"

	healthuc "github.com/antonypamo/savant-real/internal/usecase/health"
	judgeuc "github.com/antonypamo/savant-real/internal/usecase/judge"
)

// Error codes returned in the error response body.
const (
	CodeBadRequest             = "bad_request"
	CodeUnauthorized           = "unauthorized"
	CodeValidationFailed       = "validation_failed"
	CodeEmbeddingQuotaExceeded = "embedding_quota_exceeded"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeClassifierFailure      = "classifier_failure"
	CodeInternalError          = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the scoring API.
type Server struct {
	judge         *judgeuc.Service
	health        *healthuc.Service
	embedderName  string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	judge *judgeuc.Service,
	health *healthuc.Service,
	embedderName string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		judge:        judge,
		health:       health,
		embedderName: embedderName,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		classifierFailureHandler,
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type judgeRequest struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

type judgeScores struct {
	PGood  float64 `json:"p_good"`
	SRRF   float64 `json:"SRRF"`
	CRRF   float64 `json:"CRRF"`
	EPhi   float64 `json:"E_phi"`
	Cosine float64 `json:"cosine"`
	Phi    float64 `json:"phi"`
}

type judgeMeta struct {
	LatencySeconds   float64 `json:"latency_s"`
	Embedder         string  `json:"embedder"`
	Classifier       string  `json:"classifier"`
	ExpectedFeatures int     `json:"expected_features"`
}

type judgeResponse struct {
	Scores   judgeScores        `json:"scores"`
	Features map[string]float64 `json:"features"`
	Meta     judgeMeta          `json:"meta"`
}

// Judge handles POST /judge.
func (s *Server) Judge(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Prompt == "" || req.Answer == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Both prompt and answer are required")
		return
	}

	start := time.Now()

	pred, err := s.judge.Predict(r.Context(), req.Prompt, req.Answer)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, judgeResponse{
		Scores: judgeScores{
			PGood:  pred.PGood,
			SRRF:   pred.SRRF,
			CRRF:   pred.CRRF,
			EPhi:   pred.EPhi,
			Cosine: pred.Cosine,
			Phi:    pred.Phi,
		},
		Features: pred.Features,
		Meta: judgeMeta{
			LatencySeconds:   time.Since(start).Seconds(),
			Embedder:         s.embedderName,
			Classifier:       s.judge.ClassifierName(),
			ExpectedFeatures: s.judge.ExpectedFeatures(),
		},
	})
}

type rootResponse struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	Version          string `json:"version"`
	Classifier       string `json:"classifier"`
	ExpectedFeatures int    `json:"expected_features"`
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Name:             "savant-judge",
		Status:           "ok",
		Version:          version.Version,
		Classifier:       s.judge.ClassifierName(),
		ExpectedFeatures: s.judge.ExpectedFeatures(),
	})
}

type healthResponse struct {
	Status           string            `json:"status"`
	Checks           map[string]string `json:"checks,omitempty"`
	Classifier       string            `json:"classifier,omitempty"`
	ExpectedFeatures int               `json:"expected_features,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:           string(report.Status),
		Checks:           checks,
		Classifier:       report.Classifier,
		ExpectedFeatures: report.ExpectedFeatures,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrClassifierFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// classifierFailureHandler handles ErrClassifierFailure, surfacing both
// scoring-path causes when available.
func classifierFailureHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrClassifierFailure) {
		return false
	}
	var ce *domain.ClassifierError
	if errors.As(err, &ce) {
		msg = ce.Error()
	}
	writeError(w, http.StatusInternalServerError, CodeClassifierFailure, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
