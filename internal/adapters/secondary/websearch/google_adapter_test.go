package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
)

func TestGoogleAdapter_MissingCredentials(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	tests := []struct {
		name    string
		cfg     config.WebSearchConfig
		wantErr string
	}{
		{"no api key", config.WebSearchConfig{GoogleCSEID: "cx"}, "Missing GOOGLE_API_KEY"},
		{"no engine id", config.WebSearchConfig{GoogleAPIKey: "key"}, "Missing GOOGLE_CSE_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewGoogleAdapter(&tt.cfg, testLogger())
			adapter.baseURL = server.URL

			_, err := adapter.Search(context.Background(), "q")
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())

			var searchErr *domain.SearchError
			require.True(t, errors.As(err, &searchErr))
			assert.Equal(t, domain.SearchErrConfig, searchErr.Kind)
		})
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGoogleAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("key"))
		assert.Equal(t, "cx-id", q.Get("cx"))
		assert.Equal(t, "capital of France", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"kind": "customsearch#search",
			"items": []map[string]interface{}{
				{
					"title":       "Paris",
					"link":        "https://example.com/paris",
					"snippet":     "Paris is the capital...",
					"displayLink": "example.com",
					"htmlTitle":   "<b>Paris</b>",
				},
			},
		})
	}))
	defer server.Close()

	adapter := NewGoogleAdapter(&config.WebSearchConfig{GoogleAPIKey: "key", GoogleCSEID: "cx-id"}, testLogger())
	adapter.baseURL = server.URL

	results, err := adapter.Search(context.Background(), "capital of France")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Provider-specific extras like displayLink are dropped
	assert.Equal(t, domain.SearchResult{
		Title:   "Paris",
		Link:    "https://example.com/paris",
		Snippet: "Paris is the capital...",
	}, results[0])
}

func TestGoogleAdapter_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"kind": "customsearch#search"})
	}))
	defer server.Close()

	adapter := NewGoogleAdapter(&config.WebSearchConfig{GoogleAPIKey: "key", GoogleCSEID: "cx-id"}, testLogger())
	adapter.baseURL = server.URL

	results, err := adapter.Search(context.Background(), "gibberish")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogleAdapter_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	adapter := NewGoogleAdapter(&config.WebSearchConfig{GoogleAPIKey: "key", GoogleCSEID: "cx-id"}, testLogger())
	adapter.baseURL = server.URL

	_, err := adapter.Search(context.Background(), "q")
	require.Error(t, err)

	var searchErr *domain.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, domain.SearchErrProvider, searchErr.Kind)
	assert.Contains(t, err.Error(), "quota exceeded")
}
