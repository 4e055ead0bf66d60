package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/logger"
)

const tavilyBaseURL = "https://api.tavily.com"

// tavilyResponse models the fields we use from the Tavily search API
type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// TavilyAdapter implements the SearchProvider interface using the
// Tavily search API. Tavily takes a JSON POST body with the API key as
// a body field rather than a header or query parameter.
type TavilyAdapter struct {
	config     *config.WebSearchConfig
	logger     logger.Logger
	httpClient *http.Client
	baseURL    string
}

// NewTavilyAdapter creates a new TavilyAdapter
func NewTavilyAdapter(config *config.WebSearchConfig, log logger.Logger) *TavilyAdapter {
	return &TavilyAdapter{
		config:     config,
		logger:     log,
		httpClient: newHTTPClient(),
		baseURL:    tavilyBaseURL,
	}
}

// Name returns the provider identifier
func (a *TavilyAdapter) Name() string {
	return "tavily"
}

// Search performs a web search with the given query and returns results
func (a *TavilyAdapter) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if a.config.TavilyAPIKey == "" {
		return nil, domain.MissingCredential("TAVILY_API_KEY")
	}

	a.logger.Info("Performing Tavily search", "query", query)

	requestBody := map[string]interface{}{
		"api_key":        a.config.TavilyAPIKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": false,
		"include_images": false,
		"max_results":    maxOrganicResults,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrDecode, err, "tavily request encode failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "tavily request build failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Tavily request failed", "error", err)
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "tavily request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "tavily response read failed")
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Tavily returned non-OK status", "status", resp.StatusCode)
		return nil, domain.NewSearchError(domain.SearchErrProvider,
			"tavily returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResponse tavilyResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrDecode, err, "tavily response parse failed")
	}

	var results []domain.SearchResult
	for i, r := range apiResponse.Results {
		if i >= maxOrganicResults {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Content,
		})
	}

	a.logger.Info("Tavily search completed", "results_count", len(results))
	return results, nil
}
