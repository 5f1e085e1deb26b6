package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPHandle reaches the editor automation endpoint over HTTP. Scripts
// are POSTed as {"script": ...} and the endpoint answers {"result": ...}.
type HTTPHandle struct {
	url    string
	client *http.Client
}

func NewHTTPHandle(url string) *HTTPHandle {
	return &HTTPHandle{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPHandle) CreateConnector() (Connector, error) {
	if h.url == "" {
		return nil, fmt.Errorf("automation endpoint not configured")
	}
	return &httpConnector{url: h.url, client: h.client}, nil
}

type httpConnector struct {
	url    string
	client *http.Client
}

func (c *httpConnector) CallCommand(ctx context.Context, script string) (string, error) {
	body, err := json.Marshal(map[string]string{"script": script})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("automation call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("automation call: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	var out struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("automation call: %w", err)
	}
	return out.Result, nil
}
