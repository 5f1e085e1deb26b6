// Package mcpclient talks to MCP servers over the streamable HTTP
// transport: a GET handshake that yields a session id header, then
// JSON-RPC 2.0 requests POSTed with that header, answered as single
// server-sent-event frames.
package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	sessionHeader = "mcp-session-id"
	acceptTypes   = "application/json, text/event-stream"

	clientName    = "oapilot-agent-engine"
	clientVersion = "1.0.0"
)

// ErrSessionHeaderMissing means the server answered the handshake
// without a session id. The status code does not matter; without the
// header the session cannot exist.
var ErrSessionHeaderMissing = errors.New("mcp: server did not return a session id")

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("mcp: rpc error %d: %s", e.Code, e.Message)
}

// TransportError reports a non-2xx answer to a JSON-RPC POST.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mcp: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is a session-scoped MCP client for one server endpoint.
// Initialize is idempotent; a failed handshake latches and every later
// call returns the stored error until the client is rebuilt.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger

	nextID atomic.Int64

	mu          sync.Mutex
	sessionID   string
	initialized bool
	initErr     error
}

func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// Initialize acquires the session and performs the MCP initialize
// exchange. Safe for concurrent use; the network work happens once.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if c.initErr != nil {
		return c.initErr
	}
	if err := c.handshake(ctx); err != nil {
		c.initErr = err
		return err
	}
	c.initialized = true
	return nil
}

// ListTools asks the server for its tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	raw, err := c.send(ctx, "tools/list", struct{}{}, false)
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []mcp.Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: tools/list: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool by name and returns the raw result member.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	params := struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}{Name: name, Arguments: args}
	return c.send(ctx, "tools/call", params, false)
}

func (c *Client) handshake(ctx context.Context) error {
	sessionID, err := c.acquireSession(ctx)
	if err != nil {
		return err
	}
	c.sessionID = sessionID

	params := struct {
		ProtocolVersion string             `json:"protocolVersion"`
		Capabilities    map[string]any     `json:"capabilities"`
		ClientInfo      mcp.Implementation `json:"clientInfo"`
	}{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities:    map[string]any{},
		ClientInfo:      mcp.Implementation{Name: clientName, Version: clientVersion},
	}
	if _, err := c.send(ctx, "initialize", params, false); err != nil {
		return fmt.Errorf("mcp: initialize: %w", err)
	}
	if _, err := c.send(ctx, "notifications/initialized", nil, true); err != nil {
		return fmt.Errorf("mcp: initialized notification: %w", err)
	}
	c.logger.Debug("mcp session established", "endpoint", c.endpoint)
	return nil
}

// acquireSession performs the GET handshake. The session header is
// authoritative even when the status is not 2xx.
func (c *Client) acquireSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", acceptTypes)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mcp: session handshake: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	sessionID := resp.Header.Get(sessionHeader)
	if sessionID == "" {
		return "", fmt.Errorf("%w (handshake status %d)", ErrSessionHeaderMissing, resp.StatusCode)
	}
	return sessionID, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// send POSTs one JSON-RPC message. Notifications carry no id and their
// response body is ignored.
func (c *Client) send(ctx context.Context, method string, params any, notification bool) (json.RawMessage, error) {
	envelope := rpcRequest{JSONRPC: "2.0", Method: method, Params: params}
	if !notification {
		id := c.nextID.Add(1)
		envelope.ID = &id
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", acceptTypes)
	req.Header.Set(sessionHeader, c.sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
	if notification {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: %w", method, err)
	}
	payload, err := extractEventData(raw)
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: %w", method, err)
	}
	var response rpcResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("mcp: %s: malformed response: %w", method, err)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	return response.Result, nil
}

// extractEventData pulls the JSON payload out of a response body that is
// either a single SSE frame or plain JSON.
func extractEventData(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimRight(line, "\r")
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return []byte(data), nil
		}
	}
	return nil, errors.New("no data frame in response")
}
