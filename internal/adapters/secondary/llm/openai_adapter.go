package llm

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/core/ports"
	"github.com/vibin/llm-agent/internal/logger"
)

// OpenAIAdapter implements the LLMPort interface against any
// OpenAI-compatible chat completion endpoint. The primary target is a
// local llama.cpp server, which accepts requests on /v1 and ignores the
// API token.
type OpenAIAdapter struct {
	client *openai.LLM
	config *config.LLMConfig
	logger logger.Logger
}

// NewOpenAIAdapter creates a new OpenAIAdapter
func NewOpenAIAdapter(config *config.LLMConfig, log logger.Logger) (*OpenAIAdapter, error) {
	log.Info("Initializing LLM adapter", "endpoint", config.Endpoint, "model", config.Model)

	token := config.APIKey
	if token == "" {
		// llama.cpp ignores the token but the client requires one
		token = "sk-no-key-required"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Endpoint),
		openai.WithModel(config.Model),
		openai.WithToken(token),
	)
	if err != nil {
		log.Error("Failed to initialize LLM client", "error", err)
		return nil, err
	}

	return &OpenAIAdapter{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// GenerateWithTools sends the conversation and tool schemas to the
// model. Connection failures are retried with exponential backoff; a
// local llama server frequently drops the first request while loading
// the model.
func (a *OpenAIAdapter) GenerateWithTools(ctx context.Context, messages []domain.Message, tools []domain.ToolSchema) (*ports.Completion, error) {
	llmMessages := toLLMMessages(messages)
	llmTools := toLLMTools(tools)

	retries := a.config.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var resp *llms.ContentResponse
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.config.Timeout*time.Second)
		resp, err = a.client.GenerateContent(callCtx, llmMessages,
			llms.WithTools(llmTools),
			llms.WithTemperature(a.config.Temperature),
			llms.WithMaxTokens(a.config.MaxTokens),
		)
		cancel()
		if err == nil {
			break
		}

		if attempt == retries-1 {
			a.logger.Error("LLM request failed", "attempts", retries, "error", err)
			return nil, err
		}

		wait := time.Duration(float64(time.Second) * 1.5 * float64(int(1)<<attempt))
		a.logger.Warn("LLM request failed, retrying", "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(resp.Choices) == 0 {
		return &ports.Completion{}, nil
	}

	choice := resp.Choices[0]
	completion := &ports.Completion{
		Content: strings.TrimSpace(choice.Content),
	}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name == "" {
			continue
		}
		completion.ToolCalls = append(completion.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}

	return completion, nil
}

// GetModelInfo returns information about the current LLM model
func (a *OpenAIAdapter) GetModelInfo(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"model":    a.config.Model,
		"endpoint": a.config.Endpoint,
	}, nil
}

// toLLMMessages converts the domain transcript into langchaingo message
// contents, carrying assistant tool calls and tool results through the
// matching content part types.
func toLLMMessages(messages []domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))

		case domain.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))

		case domain.RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			out = append(out, mc)

		case domain.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolCallID,
						Name:       msg.ToolName,
						Content:    msg.Content,
					},
				},
			})
		}
	}

	return out
}

// toLLMTools converts tool schemas into the OpenAI function-calling format
func toLLMTools(tools []domain.ToolSchema) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, schema := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        schema.Name,
				Description: schema.Description,
				Parameters:  schema.Parameters,
			},
		})
	}
	return out
}
