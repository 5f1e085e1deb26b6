// Package agent runs the chat loop: it offers the tool catalog to the
// model, executes the tool calls it returns, and keeps going until the
// model answers in plain text.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oapilot/agent-engine/internal/catalog"
	"github.com/oapilot/agent-engine/internal/dispatch"
	"github.com/oapilot/agent-engine/internal/llm"
)

const defaultSystemPrompt = "You are a document assistant embedded in an office editor. " +
	"Use the available tools to edit the open document and manage workspace files. " +
	"Call tools when the user asks for changes; answer directly otherwise."

const defaultMaxToolRounds = 8

// ChatCompleter is the slice of the LLM client the agent needs.
type ChatCompleter interface {
	ChatWithTools(ctx context.Context, messages []llm.ChatMessage, tools []llm.Tool) (llm.ChatResponse, error)
}

// Options tune a new Agent. Zero values pick the defaults.
type Options struct {
	SystemPrompt  string
	MaxToolRounds int
}

// ToolTrace records one executed tool call for the API response.
type ToolTrace struct {
	CallID string          `json:"call_id"`
	Name   string          `json:"name"`
	Result dispatch.Result `json:"result"`
}

// ChatResult is one completed chat turn.
type ChatResult struct {
	SessionID string      `json:"session_id"`
	Reply     string      `json:"reply"`
	Traces    []ToolTrace `json:"tool_calls,omitempty"`
}

// Agent holds per-session history and serializes every chat turn, so
// tool execution is single-flight across the engine.
type Agent struct {
	llm       ChatCompleter
	dispatch  *dispatch.Dispatcher
	prompt    string
	maxRounds int
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string][]llm.ChatMessage
}

func New(completer ChatCompleter, d *dispatch.Dispatcher, opts Options, logger *slog.Logger) *Agent {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = defaultMaxToolRounds
	}
	return &Agent{
		llm:       completer,
		dispatch:  d,
		prompt:    opts.SystemPrompt,
		maxRounds: opts.MaxToolRounds,
		logger:    logger,
		sessions:  make(map[string][]llm.ChatMessage),
	}
}

// Chat runs one user turn to completion. Tool calls within a batch are
// executed strictly in the order the model emitted them, and every
// result is fed back before the model is consulted again.
func (a *Agent) Chat(ctx context.Context, sessionID, message string) (ChatResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	history := a.sessions[sessionID]

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: a.prompt})
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	tools := toolSpecs(a.dispatch.Descriptors())

	var traces []ToolTrace
	var reply string
	for round := 0; ; round++ {
		if round >= a.maxRounds {
			a.logger.Warn("tool round limit reached", "session", sessionID, "rounds", round)
			reply = "I stopped after too many consecutive tool calls. Please narrow the request and try again."
			break
		}
		response, err := a.llm.ChatWithTools(ctx, messages, tools)
		if err != nil {
			return ChatResult{}, err
		}
		if len(response.ToolCalls) == 0 {
			reply = response.Content
			break
		}
		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		for _, call := range response.ToolCalls {
			result := a.runToolCall(ctx, call)
			traces = append(traces, ToolTrace{CallID: call.ID, Name: call.Function.Name, Result: result})
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    encodeResult(result),
				ToolCallID: call.ID,
			})
		}
	}

	// Persist without the system prompt; it is rebuilt every turn.
	a.sessions[sessionID] = append(messages[1:], llm.ChatMessage{Role: "assistant", Content: reply})

	return ChatResult{SessionID: sessionID, Reply: reply, Traces: traces}, nil
}

// Reset drops a session's history.
func (a *Agent) Reset(sessionID string) {
	a.mu.Lock()
	delete(a.sessions, sessionID)
	a.mu.Unlock()
}

func (a *Agent) runToolCall(ctx context.Context, call llm.ToolCall) dispatch.Result {
	args := map[string]any{}
	raw := strings.TrimSpace(call.Function.Arguments)
	if raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return dispatch.Failf("tool %s received malformed arguments: %v", call.Function.Name, err)
		}
	}
	return a.dispatch.Execute(ctx, dispatch.Call{
		ID:        call.ID,
		Name:      call.Function.Name,
		Arguments: args,
	})
}

func encodeResult(result dispatch.Result) string {
	payload, err := json.Marshal(result)
	if err != nil {
		return `{"success":false,"error":"result serialization failed"}`
	}
	return string(payload)
}

func toolSpecs(descs []catalog.Descriptor) []llm.Tool {
	specs := make([]llm.Tool, 0, len(descs))
	for _, desc := range descs {
		params, err := json.Marshal(desc.Tool.InputSchema)
		if err != nil {
			params = []byte(`{"type":"object"}`)
		}
		specs = append(specs, llm.Tool{
			Type: "function",
			Function: llm.FunctionDef{
				Name:        desc.Tool.Name,
				Description: desc.Tool.Description,
				Parameters:  params,
			},
		})
	}
	return specs
}
