package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *Analyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	a, err := New(Config{BaseURL: server.URL, APIKey: "test-key", RequestsPerSecond: 1000, BurstSize: 1000})
	require.NoError(t, err)
	return a
}

func TestAnalyzeSuccess(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some evidence text", req.Text)

		resp := analyzeResponse{Analysis: &domain.Analysis{
			KeyPoints:  []domain.KeyPoint{{Text: "point", Importance: 0.9}},
			Confidence: 0.85,
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	analysis, err := a.Analyze(context.Background(), "some evidence text")
	require.NoError(t, err)
	assert.Equal(t, 0.85, analysis.Confidence)
	require.Len(t, analysis.KeyPoints, 1)
}

func TestAnalyzeServerErrorIsUnavailable(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := a.Analyze(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
}

func TestAnalyzeRateLimitedIsUnavailable(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := a.Analyze(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "missing analysis",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
		},
		{
			name: "confidence out of range",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"analysis":{"confidence":3.5}}`))
			},
		},
		{
			name: "backend error payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"type":"invalid_request","message":"bad input"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, tt.handler)
			_, err := a.Analyze(context.Background(), "text")
			assert.ErrorIs(t, err, domain.ErrMalformedAnalysis)
		})
	}
}

func TestAnalyzeConnectionRefusedIsUnavailable(t *testing.T) {
	a, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a, err := New(Config{BaseURL: "http://example.invalid"})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
