package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 2048

// Client is a minimal OpenAI-compatible chat-completions wrapper.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// ChatWithTools sends the conversation plus the tool catalog and returns
// the assistant turn, which carries either content or tool calls.
func (c *Client) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []Tool) (ChatResponse, error) {
	payload := chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if len(tools) > 0 {
		payload.Tools = tools
		payload.ToolChoice = "auto"
	}
	content, toolCalls, err := c.sendChatCompletion(ctx, payload)
	if err != nil {
		return ChatResponse{}, err
	}
	if strings.TrimSpace(content) == "" && len(toolCalls) == 0 {
		return ChatResponse{}, errors.New("llm: empty response")
	}
	finishReason := "stop"
	if len(toolCalls) > 0 {
		finishReason = "tool_calls"
	}
	return ChatResponse{Content: content, ToolCalls: toolCalls, FinishReason: finishReason}, nil
}

func (c *Client) sendChatCompletion(ctx context.Context, payload chatCompletionRequest) (string, []ToolCall, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", nil, ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return "", nil, ErrUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", nil, fmt.Errorf("llm: %s - %s", resp.Status, string(errorBody))
	}
	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", nil, err
	}
	if len(completion.Choices) == 0 {
		return "", nil, errors.New("llm: empty response")
	}
	msg := completion.Choices[0].Message
	return extractContent(msg.Content), normalizeToolCalls(msg.ToolCalls), nil
}

type chatCompletionRequest struct {
	Model      string        `json:"model"`
	Messages   []ChatMessage `json:"messages"`
	Tools      []Tool        `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatResponseMessage `json:"message"`
}

type chatResponseMessage struct {
	Content   json.RawMessage    `json:"content"`
	ToolCalls []chatToolCallResp `json:"tool_calls"`
}

type chatToolCallResp struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Function chatToolFunctionRaw `json:"function"`
}

type chatToolFunctionRaw struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type contentBlock struct {
	Text string `json:"text"`
}

// extractContent accepts both the plain-string and content-block shapes
// providers use for message content.
func extractContent(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var builder strings.Builder
		for _, block := range blocks {
			builder.WriteString(block.Text)
		}
		return builder.String()
	}
	return ""
}

func normalizeToolCalls(calls []chatToolCallResp) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]ToolCall, 0, len(calls))
	for idx, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			continue
		}
		callID := strings.TrimSpace(call.ID)
		if callID == "" {
			callID = fmt.Sprintf("call-%s-%d", name, idx)
		}
		result = append(result, ToolCall{
			ID:   callID,
			Type: "function",
			Function: ToolCallFunction{
				Name:      name,
				Arguments: normalizeArguments(call.Function.Arguments),
			},
		})
	}
	return result
}

func normalizeArguments(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "{}"
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			return "{}"
		}
		return asString
	}
	return trimmed
}
