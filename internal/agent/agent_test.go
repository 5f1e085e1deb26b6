package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/oapilot/agent-engine/internal/catalog"
	"github.com/oapilot/agent-engine/internal/dispatch"
	"github.com/oapilot/agent-engine/internal/editor"
	"github.com/oapilot/agent-engine/internal/llm"
	"github.com/oapilot/agent-engine/internal/logging"
	"github.com/oapilot/agent-engine/internal/storage"
)

// scriptedLLM replays canned responses and records every request.
type scriptedLLM struct {
	responses []llm.ChatResponse
	calls     [][]llm.ChatMessage
	tools     [][]llm.Tool
}

func (s *scriptedLLM) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, tools []llm.Tool) (llm.ChatResponse, error) {
	captured := make([]llm.ChatMessage, len(messages))
	copy(captured, messages)
	s.calls = append(s.calls, captured)
	s.tools = append(s.tools, tools)
	if len(s.responses) == 0 {
		return llm.ChatResponse{Content: "done"}, nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

func newTestDispatcher() *dispatch.Dispatcher {
	store := storage.New("http://unused", "", logging.Nop())
	bridge := editor.NewBridge(logging.Nop())
	d := dispatch.New(store, bridge, "workspace", logging.Nop())
	d.SetTools(catalog.New(catalog.DocumentTools()...), nil)
	return d
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Type: "function", Function: llm.ToolCallFunction{Name: name, Arguments: args}}
}

func TestPlainReply(t *testing.T) {
	scripted := &scriptedLLM{responses: []llm.ChatResponse{{Content: "hello there"}}}
	a := New(scripted, newTestDispatcher(), Options{}, logging.Nop())

	result, err := a.Chat(context.Background(), "", "hi")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Reply != "hello there" {
		t.Errorf("unexpected reply %q", result.Reply)
	}
	if result.SessionID == "" {
		t.Error("session id should be assigned")
	}
	if len(result.Traces) != 0 {
		t.Errorf("no tools expected, got %v", result.Traces)
	}
	if len(scripted.tools[0]) != 5 {
		t.Errorf("catalog should be offered to the model, got %d tools", len(scripted.tools[0]))
	}
}

func TestToolResultsFedBack(t *testing.T) {
	scripted := &scriptedLLM{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "updateParagraph", `{"text":"hi"}`)}, FinishReason: "tool_calls"},
		{Content: "done"},
	}}
	a := New(scripted, newTestDispatcher(), Options{}, logging.Nop())

	result, err := a.Chat(context.Background(), "", "add a paragraph")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Reply != "done" {
		t.Errorf("unexpected reply %q", result.Reply)
	}
	if len(result.Traces) != 1 || result.Traces[0].Name != "updateParagraph" {
		t.Fatalf("unexpected traces: %+v", result.Traces)
	}
	// No editor attached, so the result fed back to the model is a failure.
	if result.Traces[0].Result.Success {
		t.Error("expected a failed tool result")
	}

	second := scripted.calls[1]
	last := second[len(second)-1]
	if last.Role != "tool" || last.ToolCallID != "c1" {
		t.Fatalf("tool message missing, got %+v", last)
	}
	if !strings.Contains(last.Content, `"success":false`) {
		t.Errorf("tool message should carry the result envelope, got %q", last.Content)
	}
	if !strings.Contains(last.Content, "Document editor is not available") {
		t.Errorf("tool message should carry the error, got %q", last.Content)
	}
}

func TestBatchExecutedInOrder(t *testing.T) {
	scripted := &scriptedLLM{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{
			toolCall("c1", "alpha", `{}`),
			toolCall("c2", "beta", `{}`),
		}},
		{Content: "done"},
	}}
	d := newTestDispatcher()
	d.SetTools(catalog.New(), nil) // every call is unknown, order still observable
	a := New(scripted, d, Options{}, logging.Nop())

	result, err := a.Chat(context.Background(), "", "run both")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(result.Traces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(result.Traces))
	}
	if result.Traces[0].Name != "alpha" || result.Traces[1].Name != "beta" {
		t.Errorf("batch order not preserved: %+v", result.Traces)
	}
}

func TestMalformedArgumentsBecomeFailedResult(t *testing.T) {
	scripted := &scriptedLLM{responses: []llm.ChatResponse{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "updateParagraph", `{not json`)}},
		{Content: "done"},
	}}
	a := New(scripted, newTestDispatcher(), Options{}, logging.Nop())

	result, err := a.Chat(context.Background(), "", "go")
	if err != nil {
		t.Fatalf("malformed arguments must not abort the turn: %v", err)
	}
	if result.Traces[0].Result.Success {
		t.Fatal("expected a failed result")
	}
	if !strings.Contains(result.Traces[0].Result.Error, "malformed arguments") {
		t.Errorf("unexpected error %q", result.Traces[0].Result.Error)
	}
}

func TestRoundLimit(t *testing.T) {
	looping := &loopingLLM{}
	a := New(looping, newTestDispatcher(), Options{MaxToolRounds: 3}, logging.Nop())

	result, err := a.Chat(context.Background(), "", "loop forever")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if looping.rounds != 3 {
		t.Errorf("expected 3 model rounds, got %d", looping.rounds)
	}
	if !strings.Contains(result.Reply, "too many consecutive tool calls") {
		t.Errorf("unexpected reply %q", result.Reply)
	}
}

type loopingLLM struct {
	rounds int
}

func (l *loopingLLM) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, tools []llm.Tool) (llm.ChatResponse, error) {
	l.rounds++
	return llm.ChatResponse{
		ToolCalls:    []llm.ToolCall{toolCall("c", "mystery", `{}`)},
		FinishReason: "tool_calls",
	}, nil
}

func TestSessionHistoryPersists(t *testing.T) {
	scripted := &scriptedLLM{responses: []llm.ChatResponse{
		{Content: "first reply"},
		{Content: "second reply"},
	}}
	a := New(scripted, newTestDispatcher(), Options{}, logging.Nop())

	first, err := a.Chat(context.Background(), "", "first question")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := a.Chat(context.Background(), first.SessionID, "second question"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	second := scripted.calls[1]
	var sawFirstUser, sawFirstReply bool
	for _, msg := range second {
		if msg.Role == "user" && msg.Content == "first question" {
			sawFirstUser = true
		}
		if msg.Role == "assistant" && msg.Content == "first reply" {
			sawFirstReply = true
		}
	}
	if !sawFirstUser || !sawFirstReply {
		t.Errorf("history missing from second turn: %+v", second)
	}

	a.Reset(first.SessionID)
	if _, err := a.Chat(context.Background(), first.SessionID, "third"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	third := scripted.calls[2]
	for _, msg := range third {
		if msg.Content == "first question" {
			t.Error("history should be gone after Reset")
		}
	}
}
