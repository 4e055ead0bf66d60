package websearch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
)

func TestSerpAPIAdapter_MissingCredential(t *testing.T) {
	adapter := NewSerpAPIAdapter(&config.WebSearchConfig{}, testLogger())

	_, err := adapter.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, "Missing SERPAPI_API_KEY", err.Error())

	var searchErr *domain.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, domain.SearchErrConfig, searchErr.Kind)
}

func TestMapSerpAPIResponse_Organic(t *testing.T) {
	data := map[string]interface{}{
		"organic_results": []interface{}{
			map[string]interface{}{
				"title":          "Paris",
				"link":           "https://example.com/paris",
				"snippet":        "Paris is the capital...",
				"displayed_link": "example.com",
				"position":       float64(1),
			},
		},
	}

	results := mapSerpAPIResponse(data)
	require.Len(t, results, 1)

	// Extra provider fields are dropped in the mapping
	assert.Equal(t, domain.SearchResult{
		Title:   "Paris",
		Link:    "https://example.com/paris",
		Snippet: "Paris is the capital...",
	}, results[0])
}

func TestMapSerpAPIResponse_KnowledgeGraphFirst(t *testing.T) {
	data := map[string]interface{}{
		"knowledge_graph": map[string]interface{}{
			"title":       "Eiffel Tower",
			"description": "A landmark in Paris.",
		},
		"organic_results": []interface{}{
			map[string]interface{}{
				"title":   "Eiffel Tower - Wikipedia",
				"link":    "https://example.com/wiki",
				"snippet": "The Eiffel Tower is...",
			},
		},
	}

	results := mapSerpAPIResponse(data)
	require.Len(t, results, 2)

	// Knowledge panel entry leads the list and carries no link
	assert.Equal(t, domain.SearchResult{
		Title:   "Eiffel Tower",
		Snippet: "A landmark in Paris.",
	}, results[0])
	assert.Empty(t, results[0].Link)
	assert.Equal(t, "Eiffel Tower - Wikipedia", results[1].Title)
}

func TestMapSerpAPIResponse_KnowledgeGraphOnly(t *testing.T) {
	data := map[string]interface{}{
		"organic_results": []interface{}{},
		"knowledge_graph": map[string]interface{}{
			"title":       "Eiffel Tower",
			"description": "A landmark in Paris.",
		},
	}

	results := mapSerpAPIResponse(data)
	require.Len(t, results, 1)
	assert.Equal(t, "Eiffel Tower", results[0].Title)
	assert.Equal(t, "A landmark in Paris.", results[0].Snippet)
}

func TestMapSerpAPIResponse_CapsTotal(t *testing.T) {
	var organic []interface{}
	for i := 0; i < 20; i++ {
		organic = append(organic, map[string]interface{}{
			"title":   fmt.Sprintf("result %d", i),
			"link":    fmt.Sprintf("https://example.com/%d", i),
			"snippet": "snippet",
		})
	}
	data := map[string]interface{}{
		"knowledge_graph": map[string]interface{}{
			"title":       "Panel",
			"description": "Direct answer.",
		},
		"organic_results": organic,
	}

	results := mapSerpAPIResponse(data)
	assert.Len(t, results, maxOrganicResults+1)
	assert.Equal(t, "Panel", results[0].Title)
}

func TestMapSerpAPIResponse_Empty(t *testing.T) {
	assert.Empty(t, mapSerpAPIResponse(map[string]interface{}{}))
	assert.Empty(t, mapSerpAPIResponse(map[string]interface{}{
		"organic_results": []interface{}{},
	}))
}
