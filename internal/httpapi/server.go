// Package httpapi is the HTTP surface the document front end talks to.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oapilot/agent-engine/internal/agent"
	"github.com/oapilot/agent-engine/internal/dispatch"
	"github.com/oapilot/agent-engine/internal/storage"
)

// ChatService is the slice of the agent the API needs.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (agent.ChatResult, error)
	Reset(sessionID string)
}

// ToolReloader rebuilds the workspace tool catalog and returns the new
// tool count.
type ToolReloader func(ctx context.Context) (int, error)

type Server struct {
	chat      ChatService
	dispatch  *dispatch.Dispatcher
	storage   *storage.Client
	workspace string
	reload    ToolReloader
	logger    *slog.Logger
}

func New(chat ChatService, d *dispatch.Dispatcher, store *storage.Client, workspace string, reload ToolReloader, logger *slog.Logger) *Server {
	return &Server{
		chat:      chat,
		dispatch:  d,
		storage:   store,
		workspace: workspace,
		reload:    reload,
		logger:    logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/reset", s.handleChatReset)
		r.Get("/tools", s.handleTools)
		r.Post("/tools/reload", s.handleToolsReload)
		r.Get("/files", s.handleListFiles)
		r.Post("/files", s.handleCreateFile)
		r.Delete("/files", s.handleDeleteFile)
		r.Post("/files/rename", s.handleRenameFile)
		r.Get("/folders", s.handleListFolders)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
