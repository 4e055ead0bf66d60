package websearch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/logger"
)

const (
	duckduckgoBaseURL = "https://html.duckduckgo.com/html/"

	// DuckDuckGo blocks requests without a browser-looking user agent.
	duckduckgoUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DuckDuckGoAdapter implements the SearchProvider interface against the
// DuckDuckGo HTML endpoint. It is the one keyless provider: there is no
// credential to check and no JSON API, so results are scraped out of
// the returned HTML page.
type DuckDuckGoAdapter struct {
	logger     logger.Logger
	httpClient *http.Client
	baseURL    string
}

// NewDuckDuckGoAdapter creates a new DuckDuckGoAdapter
func NewDuckDuckGoAdapter(log logger.Logger) *DuckDuckGoAdapter {
	return &DuckDuckGoAdapter{
		logger:     log,
		httpClient: newHTTPClient(),
		baseURL:    duckduckgoBaseURL,
	}
}

// Name returns the provider identifier
func (a *DuckDuckGoAdapter) Name() string {
	return "duckduckgo"
}

// Search performs a web search with the given query and returns results
func (a *DuckDuckGoAdapter) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	a.logger.Info("Performing DuckDuckGo search", "query", query)

	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", "us-en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "duckduckgo request build failed")
	}
	req.Header.Set("User-Agent", duckduckgoUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("DuckDuckGo request failed", "error", err)
		return nil, domain.WrapSearchError(domain.SearchErrTransport, err, "duckduckgo request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("DuckDuckGo returned non-OK status", "status", resp.StatusCode)
		return nil, domain.NewSearchError(domain.SearchErrProvider,
			"duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.WrapSearchError(domain.SearchErrDecode, err, "duckduckgo response parse failed")
	}

	results := parseDuckDuckGoResults(doc)
	a.logger.Info("DuckDuckGo search completed", "results_count", len(results))
	return results, nil
}

// parseDuckDuckGoResults extracts organic results from the HTML page.
// Each result sits in a div.result with the title anchor and snippet
// carrying the result__a and result__snippet classes.
func parseDuckDuckGoResults(doc *goquery.Document) []domain.SearchResult {
	var results []domain.SearchResult

	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(results) >= maxOrganicResults {
			return false
		}

		anchor := sel.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		link := resolveDuckDuckGoLink(href)
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		if title == "" || link == "" {
			return true
		}

		results = append(results, domain.SearchResult{
			Title:   title,
			Link:    link,
			Snippet: snippet,
		})
		return true
	})

	return results
}

// resolveDuckDuckGoLink unwraps the redirect URLs DuckDuckGo puts on
// result anchors, where the target hides in the uddg query parameter.
func resolveDuckDuckGoLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
