package ports

import (
	"context"

	"github.com/vibin/llm-agent/internal/core/domain"
)

// SearchProvider is the capability every web search backend implements.
// A provider performs exactly one outbound request per call, maps the
// provider-native response onto normalized results, and classifies any
// failure as a *domain.SearchError. Envelope construction (the
// results/message/error split) is the shared concern of the service
// layer, not the provider.
type SearchProvider interface {
	// Name returns the provider identifier used in config and logs
	Name() string

	// Search runs one query and returns the normalized organic results,
	// already truncated to the provider result cap.
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
