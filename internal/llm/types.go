package llm

import (
	"context"
	"errors"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation passed to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// ToolName is set on RoleTool messages and names the tool whose
	// result Content carries.
	ToolName string `json:"tool_name,omitempty"`
}

// ToolSpec declares a callable tool. All tools in this service take no
// arguments; the model only decides whether to invoke them.
type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request is a single completion request.
type Request struct {
	Messages          []Message  `json:"messages"`
	SystemInstruction string     `json:"system_instruction,omitempty"`
	Tools             []ToolSpec `json:"tools,omitempty"`
}

// Response is the model output: final text, or one or more tool requests
// the caller must satisfy before re-invoking.
type Response struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Client is the narrow completion-model contract consumed by the dialogue
// core and the structured generators.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrMissingAPIKey is reported the first time a completion is actually
// needed by a process that was started without credentials.
var ErrMissingAPIKey = errors.New("llm: api key is not configured")
