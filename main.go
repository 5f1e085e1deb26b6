package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oapilot/agent-engine/internal/agent"
	"github.com/oapilot/agent-engine/internal/catalog"
	"github.com/oapilot/agent-engine/internal/config"
	"github.com/oapilot/agent-engine/internal/discovery"
	"github.com/oapilot/agent-engine/internal/dispatch"
	"github.com/oapilot/agent-engine/internal/editor"
	"github.com/oapilot/agent-engine/internal/httpapi"
	"github.com/oapilot/agent-engine/internal/llm"
	"github.com/oapilot/agent-engine/internal/logging"
	"github.com/oapilot/agent-engine/internal/mcpclient"
	"github.com/oapilot/agent-engine/internal/storage"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides OAPILOT_ADDR)")
	workspace := flag.String("workspace", "", "storage folder for this engine (overrides OAPILOT_WORKSPACE)")
	discover := flag.Bool("discover", false, "browse the LAN for MCP servers via mDNS")
	discoverTimeout := flag.Duration("discover-timeout", 3*time.Second, "mDNS browse duration")
	flag.Parse()

	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *workspace != "" {
		cfg.Workspace = *workspace
	}

	logger := logging.New(cfg.Debug)

	store := storage.New(cfg.StorageURL, cfg.TemplateURL, logger)
	bridge := editor.NewBridge(logger)
	dispatcher := dispatch.New(store, bridge, cfg.Workspace, logger)
	if cfg.EditorURL != "" {
		dispatcher.SetEditorHandle(editor.NewHTTPHandle(cfg.EditorURL))
	}

	loader := mcpclient.NewLoader(store, cfg.MCPConfigFile, logger)

	reload := func(ctx context.Context) (int, error) {
		mcpConfig, err := loader.Load(ctx, cfg.Workspace)
		if err != nil {
			logger.Warn("ignoring MCP server config", "error", err)
			mcpConfig = mcpclient.Config{}
		}
		if *discover {
			services, derr := discovery.Discover(ctx, *discoverTimeout)
			if derr != nil {
				logger.Warn("mDNS discovery failed", "error", derr)
			} else {
				logger.Info("mDNS discovery finished", "services", len(services))
				mcpConfig = mcpclient.MergeDiscovered(mcpConfig, services)
			}
		}
		workspaceTools := loader.LoadWorkspaceTools(ctx, mcpConfig)

		descs := append(catalog.DocumentTools(), catalog.StorageTools()...)
		descs = append(descs, workspaceTools.Descriptors...)
		merged := catalog.New(descs...)
		for _, name := range merged.Dropped() {
			logger.Warn("dropping duplicate tool name", "tool", name)
		}
		dispatcher.SetTools(merged, workspaceTools.Clients)
		return merged.Len(), nil
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	toolCount, _ := reload(startupCtx)
	cancel()

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	assistant := agent.New(llmClient, dispatcher, agent.Options{}, logger)
	api := httpapi.New(assistant, dispatcher, store, cfg.Workspace, reload, logger)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("agent engine listening",
			"addr", cfg.Addr,
			"workspace", cfg.Workspace,
			"tools", toolCount,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
