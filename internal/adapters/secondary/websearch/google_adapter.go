package websearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/logger"
)

const googleBaseURL = "https://www.googleapis.com/customsearch/v1"

// googleResponse models the fields we use from the Custom Search API
type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// GoogleAdapter implements the SearchProvider interface using the
// Google Programmable Search (Custom Search) API. It needs two
// credentials: the API key and the search engine id (cx), both sent as
// query parameters.
type GoogleAdapter struct {
	config     *config.WebSearchConfig
	logger     logger.Logger
	httpClient *http.Client
	baseURL    string
}

// NewGoogleAdapter creates a new GoogleAdapter
func NewGoogleAdapter(config *config.WebSearchConfig, log logger.Logger) *GoogleAdapter {
	return &GoogleAdapter{
		config:     config,
		logger:     log,
		httpClient: newHTTPClient(),
		baseURL:    googleBaseURL,
	}
}

// Name returns the provider identifier
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Search performs a web search with the given query and returns results
func (a *GoogleAdapter) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if a.config.GoogleAPIKey == "" {
		return nil, domain.MissingCredential("GOOGLE_API_KEY")
	}
	if a.config.GoogleCSEID == "" {
		return nil, domain.MissingCredential("GOOGLE_CSE_ID")
	}

	a.logger.Info("Performing Google search", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "google request build failed")
	}

	params := req.URL.Query()
	params.Set("key", a.config.GoogleAPIKey)
	params.Set("cx", a.config.GoogleCSEID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxOrganicResults))
	req.URL.RawQuery = params.Encode()

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Google search request failed", "error", err)
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "google request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "google response read failed")
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Google search returned non-OK status", "status", resp.StatusCode)
		return nil, domain.NewSearchError(domain.SearchErrProvider,
			"google returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResponse googleResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrDecode, err, "google response parse failed")
	}

	var results []domain.SearchResult
	for i, item := range apiResponse.Items {
		if i >= maxOrganicResults {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	a.logger.Info("Google search completed", "results_count", len(results))
	return results, nil
}
