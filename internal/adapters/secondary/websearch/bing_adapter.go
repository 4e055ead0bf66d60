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

const bingBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// bingResponse models the fields we use from the Bing Web Search API.
// The result list sits under the nested webPages.value path.
type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// BingAdapter implements the SearchProvider interface using the Bing
// Web Search API. The subscription key travels in a request header.
type BingAdapter struct {
	config     *config.WebSearchConfig
	logger     logger.Logger
	httpClient *http.Client
	baseURL    string
}

// NewBingAdapter creates a new BingAdapter
func NewBingAdapter(config *config.WebSearchConfig, log logger.Logger) *BingAdapter {
	return &BingAdapter{
		config:     config,
		logger:     log,
		httpClient: newHTTPClient(),
		baseURL:    bingBaseURL,
	}
}

// Name returns the provider identifier
func (a *BingAdapter) Name() string {
	return "bing"
}

// Search performs a web search with the given query and returns results
func (a *BingAdapter) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if a.config.BingAPIKey == "" {
		return nil, domain.MissingCredential("BING_API_KEY")
	}

	a.logger.Info("Performing Bing search", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "bing request build failed")
	}

	params := req.URL.Query()
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxOrganicResults))
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Ocp-Apim-Subscription-Key", a.config.BingAPIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Bing search request failed", "error", err)
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "bing request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "bing response read failed")
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Bing search returned non-OK status", "status", resp.StatusCode)
		return nil, domain.NewSearchError(domain.SearchErrProvider,
			"bing returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResponse bingResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrDecode, err, "bing response parse failed")
	}

	var results []domain.SearchResult
	for i, page := range apiResponse.WebPages.Value {
		if i >= maxOrganicResults {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   page.Name,
			Link:    page.URL,
			Snippet: page.Snippet,
		})
	}

	a.logger.Info("Bing search completed", "results_count", len(results))
	return results, nil
}
