package ports

import (
	"context"

	"github.com/vibin/llm-agent/internal/core/domain"
)

// Completion is one model response: either plain text, or a set of tool
// calls the model wants executed before it can answer.
type Completion struct {
	Content   string
	ToolCalls []domain.ToolCall
}

// LLMPort defines the interface for interacting with the LLM backend
type LLMPort interface {
	// GenerateWithTools sends the conversation history together with the
	// available tool schemas and returns the model's next message.
	GenerateWithTools(ctx context.Context, messages []domain.Message, tools []domain.ToolSchema) (*Completion, error)

	// GetModelInfo returns information about the current LLM model
	GetModelInfo(ctx context.Context) (map[string]interface{}, error)
}
