package services

import (
	"context"
	"fmt"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/core/ports"
	"github.com/vibin/llm-agent/internal/logger"
)

// maxToolSteps caps how many model/tool round trips a single user turn
// may take before the conversation is cut off.
const maxToolSteps = 20

// systemPrompt seeds every new chat. The tool-use rules matter for
// small local models, which otherwise stop after a single call when
// asked to search several things.
const systemPrompt = "You are an expert helpful assistant.\n" +
	"IMPORTANT RULES FOR TOOL USE:\n" +
	"- When the user asks to search multiple items (e.g., 'search web for hydrogen, then for carbon, then for oxygen' or 'search for A, B, and C'),\n" +
	"  you MUST call the search_web tool MULTIPLE TIMES IN PARALLEL in a SINGLE response using separate tool_calls.\n" +
	"  One tool_call for each item. Never call only one and stop.\n" +
	"- For complex problems, you may use tools sequentially across multiple turns if needed.\n" +
	"- After receiving all tool results, provide a complete final answer summarizing everything.\n" +
	"- Always obey these rules exactly."

// AgentService is the core service that drives tool-calling
// conversations: it sends the history to the LLM, executes any tool
// calls the model requests, and loops until the model produces a plain
// text answer.
type AgentService struct {
	llm        ports.LLMPort
	repository ports.ChatRepositoryPort
	registry   *ToolRegistry
	logger     logger.Logger
	config     *config.Config
}

// NewAgentService creates a new AgentService
func NewAgentService(llm ports.LLMPort, repository ports.ChatRepositoryPort, registry *ToolRegistry, config *config.Config, logger logger.Logger) *AgentService {
	return &AgentService{
		llm:        llm,
		repository: repository,
		registry:   registry,
		logger:     logger,
		config:     config,
	}
}

// CreateChat creates a new chat seeded with the system prompt
func (s *AgentService) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	s.logger.Info("Creating new chat", "title", title)
	chat := domain.NewChat(title)
	chat.AddMessage(domain.NewMessage(domain.RoleSystem, systemPrompt))

	if err := s.repository.SaveChat(ctx, chat); err != nil {
		s.logger.Error("Failed to save chat", "error", err)
		return nil, err
	}
	return chat, nil
}

// SendMessage appends a user message to a chat and runs the
// conversation loop until the model settles on a text answer. The
// returned chat contains the full transcript including tool traffic.
func (s *AgentService) SendMessage(ctx context.Context, chatID, content string) (*domain.Chat, error) {
	s.logger.Info("Sending message to chat", "chat_id", chatID)

	chat, err := s.repository.GetChat(ctx, chatID)
	if err != nil {
		s.logger.Error("Failed to get chat", "chat_id", chatID, "error", err)
		return nil, err
	}

	chat.AddMessage(domain.NewMessage(domain.RoleUser, content))

	if err := s.runConversation(ctx, chat); err != nil {
		s.logger.Error("Conversation failed", "chat_id", chatID, "error", err)
		return nil, err
	}

	if err := s.repository.SaveChat(ctx, chat); err != nil {
		s.logger.Error("Failed to save chat", "chat_id", chatID, "error", err)
		return nil, err
	}

	return chat, nil
}

// runConversation is the model/tool loop. Each iteration asks the LLM
// for the next message given the transcript and the registered tool
// schemas; tool calls are executed and their results appended before
// the next iteration.
func (s *AgentService) runConversation(ctx context.Context, chat *domain.Chat) error {
	schemas := s.registry.Schemas()

	for step := 0; step < maxToolSteps; step++ {
		completion, err := s.llm.GenerateWithTools(ctx, chat.Messages, schemas)
		if err != nil {
			return err
		}

		assistantMsg := domain.NewMessage(domain.RoleAssistant, completion.Content)
		assistantMsg.ToolCalls = completion.ToolCalls
		chat.AddMessage(assistantMsg)

		if len(completion.ToolCalls) == 0 {
			return nil
		}

		for _, call := range completion.ToolCalls {
			s.logger.Info("Executing tool call", "tool", call.Name, "arguments", call.Arguments)
			result := s.registry.Execute(ctx, call)
			chat.AddMessage(domain.NewToolMessage(call, result))
		}
	}

	return fmt.Errorf("conversation exceeded %d tool steps without a final answer", maxToolSteps)
}

// GetChat retrieves a chat by ID
func (s *AgentService) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	return s.repository.GetChat(ctx, id)
}

// ListChats returns all chats
func (s *AgentService) ListChats(ctx context.Context) ([]*domain.Chat, error) {
	return s.repository.ListChats(ctx)
}

// DeleteChat deletes a chat by ID
func (s *AgentService) DeleteChat(ctx context.Context, id string) error {
	s.logger.Info("Deleting chat", "chat_id", id)
	return s.repository.DeleteChat(ctx, id)
}

// ToolSchemas returns the schemas of all registered tools
func (s *AgentService) ToolSchemas() []domain.ToolSchema {
	return s.registry.Schemas()
}

// GetModelInfo returns information about the current LLM model
func (s *AgentService) GetModelInfo(ctx context.Context) (map[string]interface{}, error) {
	return s.llm.GetModelInfo(ctx)
}
