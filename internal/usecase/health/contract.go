package health

import "context"

// CachePinger checks embedding-cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// ClassifierInfo exposes the loaded classifier's identity.
type ClassifierInfo interface {
	ClassifierName() string
	ExpectedFeatures() int
}
