// Package health aggregates component health for the readiness endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. The classifier fields describe
// the loaded model rather than a live dependency: a missing model fails
// at startup, not here.
type Report struct {
	Status           Status
	Checks           map[string]CheckResult
	Classifier       string
	ExpectedFeatures int
}

// Service coordinates health checks.
type Service struct {
	cache      CachePinger
	embedding  EmbeddingChecker
	classifier ClassifierInfo
}

// New creates a Service. cache and embedding can be nil when the
// component is not configured.
func New(cache CachePinger, embedding EmbeddingChecker, classifier ClassifierInfo) *Service {
	return &Service{cache: cache, embedding: embedding, classifier: classifier}
}

// Check runs health checks against the configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks}
	if s.classifier != nil {
		report.Classifier = s.classifier.ClassifierName()
		report.ExpectedFeatures = s.classifier.ExpectedFeatures()
	}
	return report
}
