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

func TestBingAdapter_MissingCredential(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	adapter := NewBingAdapter(&config.WebSearchConfig{}, testLogger())
	adapter.baseURL = server.URL

	_, err := adapter.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, "Missing BING_API_KEY", err.Error())

	var searchErr *domain.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, domain.SearchErrConfig, searchErr.Kind)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestBingAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"), "credential travels in a header")
		assert.Equal(t, "capital of France", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"webPages": map[string]interface{}{
				"value": []map[string]interface{}{
					{
						"name":       "Paris",
						"url":        "https://example.com/paris",
						"snippet":    "Paris is the capital...",
						"displayUrl": "example.com/paris",
					},
					{
						"name":    "France",
						"url":     "https://example.com/france",
						"snippet": "A country in Europe.",
					},
				},
			},
		})
	}))
	defer server.Close()

	adapter := NewBingAdapter(&config.WebSearchConfig{BingAPIKey: "secret"}, testLogger())
	adapter.baseURL = server.URL

	results, err := adapter.Search(context.Background(), "capital of France")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.SearchResult{
		Title:   "Paris",
		Link:    "https://example.com/paris",
		Snippet: "Paris is the capital...",
	}, results[0])
	assert.Equal(t, "France", results[1].Title)
}

func TestBingAdapter_MissingWebPages(t *testing.T) {
	// A pure answer response without the webPages path maps to zero results
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"_type": "SearchResponse"})
	}))
	defer server.Close()

	adapter := NewBingAdapter(&config.WebSearchConfig{BingAPIKey: "secret"}, testLogger())
	adapter.baseURL = server.URL

	results, err := adapter.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBingAdapter_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit"}}`))
	}))
	defer server.Close()

	adapter := NewBingAdapter(&config.WebSearchConfig{BingAPIKey: "secret"}, testLogger())
	adapter.baseURL = server.URL

	_, err := adapter.Search(context.Background(), "q")
	require.Error(t, err)

	var searchErr *domain.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, domain.SearchErrProvider, searchErr.Kind)
	assert.Contains(t, err.Error(), "429")
}
