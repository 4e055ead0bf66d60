// Package websearch contains the secondary adapters for the search_web
// tool. Each adapter implements ports.SearchProvider against one
// third-party provider: SerpAPI, Tavily, Google Programmable Search,
// Bing Web Search, or the keyless DuckDuckGo HTML endpoint. All of them
// make exactly one outbound request per call, never retry, and map the
// first few provider results onto domain.SearchResult.
package websearch

import (
	"net/http"
	"time"
)

const (
	// maxOrganicResults caps how many organic results an adapter maps
	// from a provider response.
	maxOrganicResults = 5

	// requestTimeout bounds every outbound provider call.
	requestTimeout = 10 * time.Second
)

// newHTTPClient builds the client shared by the HTTP-based adapters
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
	}
}

// getStringValue safely extracts a string field from a decoded JSON map
func getStringValue(data map[string]interface{}, key string) string {
	if value, ok := data[key]; ok {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	return ""
}
