package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a single entry in a conversation history. Tool call
// requests and tool results travel through the same type so the full
// transcript can be replayed to the LLM on every turn.
type Message struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"` // system, user, assistant or tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // set on assistant messages requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on tool result messages
	ToolName   string     `json:"tool_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToolCall is a single function invocation requested by the model.
// Arguments holds the raw JSON string exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Chat represents a conversation between a user and the agent
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMessage creates a new message
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewToolMessage creates a tool result message answering a specific tool call
func NewToolMessage(call ToolCall, content string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		CreatedAt:  time.Now(),
	}
}

// NewChat creates a new chat
func NewChat(title string) *Chat {
	return &Chat{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// AddMessage adds a message to the chat
func (c *Chat) AddMessage(message Message) {
	c.Messages = append(c.Messages, message)
	c.UpdatedAt = time.Now()
}

// LastAssistantMessage returns the content of the most recent assistant
// message, or an empty string if the chat has none.
func (c *Chat) LastAssistantMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content
		}
	}
	return ""
}
