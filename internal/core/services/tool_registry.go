package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/core/ports"
	"github.com/vibin/llm-agent/internal/logger"
)

// ToolRegistry holds the tools available to the agent, keyed by the
// function name from their schema. Registration happens at startup;
// lookups happen on every conversation turn.
type ToolRegistry struct {
	tools  map[string]ports.Tool
	order  []string
	mu     sync.RWMutex
	logger logger.Logger
}

// NewToolRegistry creates a new ToolRegistry
func NewToolRegistry(log logger.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:  make(map[string]ports.Tool),
		logger: log,
	}
}

// Register adds a tool under its schema name, replacing any previous
// registration for the same name
func (r *ToolRegistry) Register(tool ports.Tool) {
	name := tool.Schema().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	r.logger.Info("Registered tool", "tool", name)
}

// Schemas returns the schemas of all registered tools in registration order
func (r *ToolRegistry) Schemas() []domain.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]domain.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema())
	}
	return schemas
}

// Execute runs a model-requested tool call and returns the content of
// the resulting tool message. Failures never escape: an unknown tool or
// an execution error both come back as an error document the model can
// read.
func (r *ToolRegistry) Execute(ctx context.Context, call domain.ToolCall) string {
	r.mu.RLock()
	tool, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("Model requested unknown tool", "tool", call.Name)
		return `{"error": "Unknown tool"}`
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		r.logger.Error("Tool execution failed", "tool", call.Name, "error", err)
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(data)
	}
	return result
}
