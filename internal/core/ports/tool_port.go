package ports

import (
	"context"

	"github.com/vibin/llm-agent/internal/core/domain"
)

// Tool is a callable capability exposed to the function-calling LLM.
// Execute receives the raw JSON argument string from the model's tool
// call and returns the string content of the tool result message.
type Tool interface {
	// Schema returns the static invocation schema registered with the host
	Schema() domain.ToolSchema

	// Execute runs the tool with the model-supplied JSON arguments
	Execute(ctx context.Context, rawArgs string) (string, error)
}
