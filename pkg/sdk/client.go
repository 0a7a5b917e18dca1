package savant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors mapped from service error codes. Use errors.Is() to check.
var (
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	ErrClassifierFailure      = errors.New("classifier failure")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrValidation             = errors.New("validation failed")
)

// Client is the savant-judge API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Scores holds the probability and its derived scalar metrics.
type Scores struct {
	PGood  float64 `json:"p_good"`
	SRRF   float64 `json:"SRRF"`
	CRRF   float64 `json:"CRRF"`
	EPhi   float64 `json:"E_phi"`
	Cosine float64 `json:"cosine"`
	Phi    float64 `json:"phi"`
}

// Meta describes how a judgement was produced.
type Meta struct {
	LatencySeconds   float64 `json:"latency_s"`
	Embedder         string  `json:"embedder"`
	Classifier       string  `json:"classifier"`
	ExpectedFeatures int     `json:"expected_features"`
}

// JudgeResult is the full scoring response.
type JudgeResult struct {
	Scores   Scores             `json:"scores"`
	Features map[string]float64 `json:"features"`
	Meta     Meta               `json:"meta"`
}

// Judge scores a (prompt, answer) pair.
func (c *Client) Judge(ctx context.Context, prompt, answer string) (*JudgeResult, error) {
	body, err := json.Marshal(map[string]string{
		"prompt": prompt,
		"answer": answer,
	})
	if err != nil {
		return nil, fmt.Errorf("savant: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/judge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("savant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("savant: judge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var result JudgeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("savant: decode response: %w", err)
	}
	return &result, nil
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status           string            `json:"status"`
	Checks           map[string]string `json:"checks"`
	Classifier       string            `json:"classifier"`
	ExpectedFeatures int               `json:"expected_features"`
}

// Health checks service health. A degraded service returns the report
// with a non-"ok" status rather than an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("savant: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("savant: health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, c.apiError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("savant: decode response: %w", err)
	}
	return &status, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError maps an error response to a sentinel-wrapped error.
func (c *Client) apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Code == "" {
		return fmt.Errorf("savant: unexpected status %d", resp.StatusCode)
	}

	sentinel := sentinelFor(er.Code)
	if sentinel != nil {
		return fmt.Errorf("savant: %s: %w", er.Message, sentinel)
	}
	return fmt.Errorf("savant: %s (%s)", er.Message, er.Code)
}

func sentinelFor(code string) error {
	switch code {
	case "embedding_quota_exceeded":
		return ErrEmbeddingQuotaExceeded
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "classifier_failure":
		return ErrClassifierFailure
	case "unauthorized":
		return ErrUnauthorized
	case "validation_failed", "bad_request":
		return ErrValidation
	}
	return nil
}
