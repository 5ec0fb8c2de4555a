// ABOUTME: Core AI types: Message, Content, Tool, Usage, Request, Response
// ABOUTME: Provider-agnostic; wire-format neutral

package ai

import (
	"context"
	"encoding/json"
)

// Role represents a message role in the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopToolUse   StopReason = "tool_use"
	StopBlocked   StopReason = "blocked"
)

// ContentType identifies the kind of content block.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentToolUse    ContentType = "tool_use"
	ContentToolResult ContentType = "tool_result"
)

// Content represents a content block within a message.
type Content struct {
	Type       ContentType     `json:"type"`
	Text       string          `json:"text,omitempty"`
	ID         string          `json:"id,omitempty"`          // Tool use/result ID
	Name       string          `json:"name,omitempty"`        // Tool name
	Input      json.RawMessage `json:"input,omitempty"`       // Tool use input
	ResultText string          `json:"result_text,omitempty"` // Tool result content
	IsError    bool            `json:"is_error,omitempty"`    // Tool result error flag
}

// Message represents a conversation message.
type Message struct {
	Role    Role      `json:"role"`
	Content []Content `json:"content"`
}

// NewTextMessage creates a message with a single text content block.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: []Content{{Type: ContentText, Text: text}},
	}
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Tool defines a tool the model can invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Request is an assembled model invocation.
type Request struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response is a completed model invocation.
// Metadata holds fields set by hooks that the runtime does not interpret.
type Response struct {
	Text       string         `json:"text"`
	StopReason StopReason     `json:"stop_reason"`
	Model      string         `json:"model,omitempty"`
	Usage      Usage          `json:"usage"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Provider turns an assembled request into a model call.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}
