// Package llm provides the chat-completions client and the message and
// tool types shared with the agent loop.
package llm

import (
	"encoding/json"
	"errors"
)

var (
	ErrUnauthorized = errors.New("llm: invalid or missing API key")
	ErrRateLimited  = errors.New("llm: rate limited")
	ErrUnavailable  = errors.New("llm: service unavailable")
)

// Tool describes a function tool offered to the model.
type Tool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef carries a tool's name, description and JSON parameter schema.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the tool name and its raw JSON arguments string.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is one entry in a conversation, including assistant tool
// calls and tool result messages.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ChatResponse is the assistant turn returned by the model.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}
