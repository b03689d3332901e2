// Package remote provides an analysis backend over an HTTP JSON API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
	"github.com/custodia-labs/casetrail-cli/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second

	// DefaultRequestsPerSecond keeps well under typical API quotas.
	DefaultRequestsPerSecond = 2.0
	// DefaultBurstSize bounds short request bursts.
	DefaultBurstSize = 5
)

// Config holds configuration for the remote analysis backend.
type Config struct {
	// BaseURL is the API base URL (required).
	BaseURL string

	// APIKey is the bearer token, empty for unauthenticated endpoints.
	APIKey string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond is the sustained rate limit (default: 2).
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 5).
	BurstSize int
}

// Analyzer sends text to a remote analysis endpoint and validates the
// response shape before handing it to the core.
type Analyzer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// analyzeRequest is the /v1/analyze request format.
type analyzeRequest struct {
	Text string `json:"text"`
}

// analyzeResponse is the /v1/analyze response format.
type analyzeResponse struct {
	Analysis *domain.Analysis `json:"analysis"`
	Error    *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a remote analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &Analyzer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}, nil
}

// Analyze sends text to the backend. Transport failures surface as
// ErrAnalyzerUnavailable and structurally invalid responses as
// ErrMalformedAnalysis, so callers can degrade without inspecting
// backend-specific errors.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.baseURL+"/v1/analyze",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrAnalyzerUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", domain.ErrAnalyzerUnavailable, resp.StatusCode)
	}

	var analyzeResp analyzeResponse
	if err := json.Unmarshal(body, &analyzeResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAnalysis, err)
	}

	if analyzeResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedAnalysis, analyzeResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMalformedAnalysis, resp.StatusCode)
	}

	if err := validate(analyzeResp.Analysis); err != nil {
		return nil, err
	}

	return analyzeResp.Analysis, nil
}

// validate checks the response carries the required fields. The
// backend is opaque beyond this shape check.
func validate(analysis *domain.Analysis) error {
	if analysis == nil {
		return fmt.Errorf("%w: missing analysis", domain.ErrMalformedAnalysis)
	}
	if analysis.Confidence < 0 || analysis.Confidence > 1 {
		return fmt.Errorf("%w: confidence out of range", domain.ErrMalformedAnalysis)
	}
	return nil
}
