package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/muhammadmuzzammil1998/jsonc"

	"github.com/oapilot/agent-engine/internal/catalog"
	"github.com/oapilot/agent-engine/internal/discovery"
)

// ErrConfigParse means the workspace server config could not be decoded.
var ErrConfigParse = errors.New("mcp: malformed server config")

// ServerConfig is one entry of the workspace MCP config. Only the
// "http" transport is supported; other types are skipped.
type ServerConfig struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Config is the decoded workspace MCP config file.
type Config struct {
	Servers map[string]ServerConfig `json:"servers"`
}

// ConfigSource fetches the config file from workspace storage.
// *storage.Client satisfies it.
type ConfigSource interface {
	Download(ctx context.Context, filename, folder string) ([]byte, error)
}

// WorkspaceTools is the aggregate of every reachable server's tools,
// each descriptor tagged with its server, plus the live session clients.
type WorkspaceTools struct {
	Descriptors []catalog.Descriptor
	Clients     map[string]*Client
}

// Loader reads the workspace MCP config and aggregates tools from the
// servers it names.
type Loader struct {
	source     ConfigSource
	configFile string
	logger     *slog.Logger

	// newClient is swappable in tests.
	newClient func(endpoint string) *Client
}

func NewLoader(source ConfigSource, configFile string, logger *slog.Logger) *Loader {
	l := &Loader{source: source, configFile: configFile, logger: logger}
	l.newClient = func(endpoint string) *Client {
		return NewClient(endpoint, logger)
	}
	return l
}

// ParseConfig decodes the JSONC config. Comment stripping must leave
// "//" inside quoted strings alone, or every http:// URL would break.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// Load fetches and parses the config from the workspace folder. A
// missing file is a normal empty config; a malformed one is an error.
func (l *Loader) Load(ctx context.Context, workspace string) (Config, error) {
	data, err := l.source.Download(ctx, l.configFile, workspace)
	if err != nil {
		l.logger.Info("no MCP server config in workspace", "file", l.configFile, "workspace", workspace)
		return Config{}, nil
	}
	return ParseConfig(data)
}

// MergeDiscovered adds mDNS-discovered servers to the config under
// their instance names. Config entries win name collisions.
func MergeDiscovered(cfg Config, services []discovery.ServiceInfo) Config {
	if len(services) == 0 {
		return cfg
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]ServerConfig, len(services))
	}
	for _, svc := range services {
		if _, exists := cfg.Servers[svc.InstanceName]; exists {
			continue
		}
		cfg.Servers[svc.InstanceName] = ServerConfig{Type: "http", URL: svc.URL()}
	}
	return cfg
}

// LoadWorkspaceTools connects to every http server in the config, in
// sorted name order, and aggregates their tools. A failing server is
// logged and skipped; it never takes the others down. The result is
// never nil.
func (l *Loader) LoadWorkspaceTools(ctx context.Context, cfg Config) *WorkspaceTools {
	out := &WorkspaceTools{Clients: make(map[string]*Client)}

	names := make([]string, 0, len(cfg.Servers))
	for name := range cfg.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		server := cfg.Servers[name]
		if server.Type != "http" {
			l.logger.Debug("skipping MCP server with unsupported transport", "server", name, "type", server.Type)
			continue
		}
		client := l.newClient(server.URL)
		tools, err := client.ListTools(ctx)
		if err != nil {
			l.logger.Warn("MCP server unavailable", "server", name, "url", server.URL, "error", err)
			continue
		}
		for _, tool := range tools {
			if tool.Description == "" {
				tool.Description = "MCP tool: " + tool.Name
			}
			if tool.InputSchema.Type == "" {
				tool.InputSchema = mcp.ToolInputSchema{Type: "object"}
			}
			out.Descriptors = append(out.Descriptors, catalog.Descriptor{
				Tool:   tool,
				Origin: catalog.MCPOrigin(name),
			})
		}
		out.Clients[name] = client
		l.logger.Info("loaded MCP tools", "server", name, "count", len(tools))
	}
	return out
}
