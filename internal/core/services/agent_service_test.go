package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/core/ports"
)

// scriptedLLM replays a fixed sequence of completions
type scriptedLLM struct {
	completions []*ports.Completion
	turn        int
	seenTools   [][]domain.ToolSchema
}

func (l *scriptedLLM) GenerateWithTools(ctx context.Context, messages []domain.Message, tools []domain.ToolSchema) (*ports.Completion, error) {
	l.seenTools = append(l.seenTools, tools)
	if l.turn >= len(l.completions) {
		return nil, errors.New("no more scripted completions")
	}
	c := l.completions[l.turn]
	l.turn++
	return c, nil
}

func (l *scriptedLLM) GetModelInfo(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"model": "scripted"}, nil
}

// mapRepo is a minimal in-memory ChatRepositoryPort
type mapRepo struct {
	chats map[string]*domain.Chat
}

func newMapRepo() *mapRepo {
	return &mapRepo{chats: make(map[string]*domain.Chat)}
}

func (r *mapRepo) SaveChat(ctx context.Context, chat *domain.Chat) error {
	r.chats[chat.ID] = chat
	return nil
}

func (r *mapRepo) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.New("chat not found")
	}
	return chat, nil
}

func (r *mapRepo) ListChats(ctx context.Context) ([]*domain.Chat, error) {
	var out []*domain.Chat
	for _, c := range r.chats {
		out = append(out, c)
	}
	return out, nil
}

func (r *mapRepo) DeleteChat(ctx context.Context, id string) error {
	delete(r.chats, id)
	return nil
}

func newTestAgent(llm ports.LLMPort, tools ...ports.Tool) (*AgentService, *mapRepo) {
	registry := NewToolRegistry(testLogger())
	for _, tool := range tools {
		registry.Register(tool)
	}
	repo := newMapRepo()
	return NewAgentService(llm, repo, registry, config.DefaultConfig(), testLogger()), repo
}

func TestAgentService_PlainAnswer(t *testing.T) {
	llm := &scriptedLLM{completions: []*ports.Completion{
		{Content: "Hello there."},
	}}
	agent, _ := newTestAgent(llm)

	ctx := context.Background()
	chat, err := agent.CreateChat(ctx, "test")
	require.NoError(t, err)

	chat, err = agent.SendMessage(ctx, chat.ID, "hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello there.", chat.LastAssistantMessage())
	// system prompt, user, assistant
	require.Len(t, chat.Messages, 3)
	assert.Equal(t, domain.RoleSystem, chat.Messages[0].Role)
}

func TestAgentService_ToolCallLoop(t *testing.T) {
	llm := &scriptedLLM{completions: []*ports.Completion{
		{ToolCalls: []domain.ToolCall{
			{ID: "call_1", Name: "search_web", Arguments: `{"query": "hydrogen"}`},
			{ID: "call_2", Name: "search_web", Arguments: `{"query": "carbon"}`},
		}},
		{Content: "Hydrogen and carbon are elements."},
	}}
	tool := &fakeTool{name: "search_web", result: `{"results": []}`}
	agent, _ := newTestAgent(llm, tool)

	ctx := context.Background()
	chat, err := agent.CreateChat(ctx, "test")
	require.NoError(t, err)

	chat, err = agent.SendMessage(ctx, chat.ID, "search hydrogen and carbon")
	require.NoError(t, err)

	assert.Equal(t, "Hydrogen and carbon are elements.", chat.LastAssistantMessage())
	assert.Equal(t, []string{`{"query": "hydrogen"}`, `{"query": "carbon"}`}, tool.calls)

	// transcript: system, user, assistant(tool_calls), tool, tool, assistant
	require.Len(t, chat.Messages, 6)
	assert.Equal(t, domain.RoleTool, chat.Messages[3].Role)
	assert.Equal(t, "call_1", chat.Messages[3].ToolCallID)
	assert.Equal(t, "call_2", chat.Messages[4].ToolCallID)

	// schemas were offered to the model on both turns
	require.Len(t, llm.seenTools, 2)
	require.Len(t, llm.seenTools[0], 1)
	assert.Equal(t, "search_web", llm.seenTools[0][0].Name)
}

func TestAgentService_UnknownToolStillAnswered(t *testing.T) {
	llm := &scriptedLLM{completions: []*ports.Completion{
		{ToolCalls: []domain.ToolCall{{ID: "call_1", Name: "no_such_tool", Arguments: `{}`}}},
		{Content: "Could not use that tool."},
	}}
	agent, _ := newTestAgent(llm)

	ctx := context.Background()
	chat, err := agent.CreateChat(ctx, "test")
	require.NoError(t, err)

	chat, err = agent.SendMessage(ctx, chat.ID, "do something")
	require.NoError(t, err)

	assert.Equal(t, `{"error": "Unknown tool"}`, chat.Messages[3].Content)
	assert.Equal(t, "Could not use that tool.", chat.LastAssistantMessage())
}

func TestAgentService_StepCap(t *testing.T) {
	// A model that never stops calling tools runs into the step cap
	completions := make([]*ports.Completion, maxToolSteps)
	for i := range completions {
		completions[i] = &ports.Completion{
			ToolCalls: []domain.ToolCall{{ID: "c", Name: "search_web", Arguments: `{}`}},
		}
	}
	llm := &scriptedLLM{completions: completions}
	agent, _ := newTestAgent(llm, &fakeTool{name: "search_web", result: `{"results": []}`})

	ctx := context.Background()
	chat, err := agent.CreateChat(ctx, "test")
	require.NoError(t, err)

	_, err = agent.SendMessage(ctx, chat.ID, "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool steps")
}

func TestAgentService_LLMFailure(t *testing.T) {
	llm := &scriptedLLM{} // immediately out of completions
	agent, repo := newTestAgent(llm)

	ctx := context.Background()
	chat, err := agent.CreateChat(ctx, "test")
	require.NoError(t, err)

	_, err = agent.SendMessage(ctx, chat.ID, "hi")
	require.Error(t, err)

	// no assistant answer was recorded for the failed turn
	saved, err := repo.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.LastAssistantMessage())
}
