package websearch

import (
	"context"

	serpapi "github.com/serpapi/google-search-results-golang"
	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/logger"
)

// SerpAPIAdapter implements the SearchProvider interface using SerpAPI.
// It is the only provider that exposes a Google knowledge graph block;
// when present it is mapped to one extra result at the front of the
// list, so a response can carry up to maxOrganicResults+1 items.
type SerpAPIAdapter struct {
	config *config.WebSearchConfig
	logger logger.Logger
}

// NewSerpAPIAdapter creates a new SerpAPIAdapter
func NewSerpAPIAdapter(config *config.WebSearchConfig, log logger.Logger) *SerpAPIAdapter {
	return &SerpAPIAdapter{
		config: config,
		logger: log,
	}
}

// Name returns the provider identifier
func (a *SerpAPIAdapter) Name() string {
	return "serpapi"
}

// Search performs a web search with the given query and returns results
func (a *SerpAPIAdapter) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if a.config.SerpAPIKey == "" {
		return nil, domain.MissingCredential("SERPAPI_API_KEY")
	}

	a.logger.Info("Performing SerpAPI search", "query", query)

	// The API key travels as a query parameter; the client appends it.
	parameters := map[string]string{
		"q":             query,
		"engine":        "google",
		"google_domain": "google.com",
		"gl":            "us",
		"hl":            "en",
	}

	client := serpapi.NewGoogleSearch(parameters, a.config.SerpAPIKey)

	data, err := client.GetJSON()
	if err != nil {
		a.logger.Error("SerpAPI search failed", "error", err)
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "serpapi request failed")
	}

	results := mapSerpAPIResponse(data)
	a.logger.Info("SerpAPI search completed", "results_count", len(results))
	return results, nil
}

// mapSerpAPIResponse maps the loosely-typed SerpAPI payload onto
// normalized results: the knowledge graph entry first when present,
// then up to maxOrganicResults organic results.
func mapSerpAPIResponse(data map[string]interface{}) []domain.SearchResult {
	var results []domain.SearchResult

	if kg, ok := data["knowledge_graph"].(map[string]interface{}); ok {
		item := domain.SearchResult{
			Title:   getStringValue(kg, "title"),
			Snippet: getStringValue(kg, "description"),
		}
		if item.Title != "" || item.Snippet != "" {
			results = append(results, item)
		}
	}

	if organic, ok := data["organic_results"].([]interface{}); ok {
		for i, result := range organic {
			if i >= maxOrganicResults {
				break
			}
			resultMap, ok := result.(map[string]interface{})
			if !ok {
				continue
			}
			results = append(results, domain.SearchResult{
				Title:   getStringValue(resultMap, "title"),
				Link:    getStringValue(resultMap, "link"),
				Snippet: getStringValue(resultMap, "snippet"),
			})
		}
	}

	return results
}
