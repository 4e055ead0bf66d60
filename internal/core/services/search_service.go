package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/core/ports"
	"github.com/vibin/llm-agent/internal/logger"
)

// SearchToolName is the function name registered with the LLM host
const SearchToolName = "search_web"

// SearchToolSchema returns the static invocation schema for the
// search_web tool. The schema is identical regardless of which provider
// backs the tool, so a host loader needs no changes when swapping
// providers.
func SearchToolSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        SearchToolName,
		Description: "Search the web for information. Returns a list of search results with titles, links, and snippets.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: map[string]domain.PropertySchema{
				"query": {
					Type:        "string",
					Description: "The search query",
				},
			},
			Required: []string{"query"},
		},
	}
}

// SearchService wraps a SearchProvider into the normalized envelope
// contract and exposes it as a tool. The provider handles transport and
// field mapping; this stage owns the results/message/error split, which
// is therefore identical across all providers.
type SearchService struct {
	provider ports.SearchProvider
	logger   logger.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(provider ports.SearchProvider, log logger.Logger) *SearchService {
	return &SearchService{
		provider: provider,
		logger:   log,
	}
}

// Provider returns the name of the configured search provider
func (s *SearchService) Provider() string {
	return s.provider.Name()
}

// Search runs one query and folds the outcome into a SearchEnvelope.
// Every failure ends up in the error field; an empty result list
// becomes the distinct no-results message rather than an empty list.
func (s *SearchService) Search(ctx context.Context, query string) domain.SearchEnvelope {
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return domain.SearchEnvelope{Error: err.Error()}
	}

	if len(results) == 0 {
		return domain.SearchEnvelope{Message: fmt.Sprintf("No results found for '%s'", query)}
	}

	return domain.SearchEnvelope{Results: results}
}

// Schema returns the static tool schema
func (s *SearchService) Schema() domain.ToolSchema {
	return SearchToolSchema()
}

// Execute implements ports.Tool. The model-supplied arguments are
// decoded leniently: unparseable arguments degrade to an empty query,
// whose rejection then surfaces through the provider's error path.
func (s *SearchService) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		s.logger.Warn("Malformed search_web arguments", "args", rawArgs, "error", err)
	}

	envelope := s.Search(ctx, args.Query)

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
