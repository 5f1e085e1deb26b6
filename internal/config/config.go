// Package config loads engine settings from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds everything main needs to wire the engine together.
type Config struct {
	// Addr is the HTTP listen address for the engine API.
	Addr string
	// StorageURL is the base URL of the document storage service.
	StorageURL string
	// TemplateURL is where new-document templates are fetched from.
	// Defaults to StorageURL.
	TemplateURL string
	// Workspace is the storage folder backing this engine instance.
	Workspace string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// EditorURL is the document editor automation endpoint. Empty means
	// no editor is attached and document tools report unavailability.
	EditorURL string

	// MCPConfigFile is the JSONC server list looked up in the workspace.
	MCPConfigFile string

	Debug bool
}

// Load reads the configuration from OAPILOT_* environment variables,
// falling back to defaults suitable for local development.
func Load() Config {
	cfg := Config{
		Addr:          getEnv("OAPILOT_ADDR", ":8085"),
		StorageURL:    getEnv("OAPILOT_STORAGE_URL", "http://localhost:8000"),
		Workspace:     getEnv("OAPILOT_WORKSPACE", "workspace"),
		LLMBaseURL:    getEnv("OAPILOT_LLM_BASE_URL", "https://api.deepseek.com"),
		LLMAPIKey:     os.Getenv("OAPILOT_LLM_KEY"),
		LLMModel:      getEnv("OAPILOT_LLM_MODEL", "deepseek-chat"),
		EditorURL:     os.Getenv("OAPILOT_EDITOR_URL"),
		MCPConfigFile: getEnv("OAPILOT_MCP_CONFIG", ".mcp.txt"),
		Debug:         getBool("OAPILOT_DEBUG", false),
	}
	cfg.TemplateURL = getEnv("OAPILOT_TEMPLATE_URL", cfg.StorageURL)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
