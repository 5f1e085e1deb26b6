package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oapilot/agent-engine/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	result, err := s.chat.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.chat.Reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	type toolView struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Origin      string `json:"origin"`
	}
	descs := s.dispatch.Descriptors()
	views := make([]toolView, 0, len(descs))
	for _, desc := range descs {
		views = append(views, toolView{
			Name:        desc.Tool.Name,
			Description: desc.Tool.Description,
			Origin:      desc.Origin.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": views, "count": len(views)})
}

func (s *Server) handleToolsReload(w http.ResponseWriter, r *http.Request) {
	count, err := s.reload(r.Context())
	if err != nil {
		s.logger.Error("tool reload failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tools": count})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	folder := s.folderOrWorkspace(r)
	files, err := s.storage.ListFiles(r.Context(), folder)
	if err != nil {
		writeError(w, storageStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder": folder, "files": files})
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string `json:"type"`
		Filename string `json:"filename"`
		Folder   string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = s.workspace
	}
	created, err := s.storage.Create(r.Context(), req.Type, req.Filename, folder)
	if err != nil {
		writeError(w, storageStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if err := s.storage.Delete(r.Context(), filename, s.folderOrWorkspace(r)); err != nil {
		writeError(w, storageStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": filename})
}

func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldFilename string `json:"oldFilename"`
		NewName     string `json:"newName"`
		Folder      string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = s.workspace
	}
	renamed, err := s.storage.Rename(r.Context(), req.OldFilename, req.NewName, folder)
	if err != nil {
		writeError(w, storageStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.storage.ListFolders(r.Context())
	if err != nil {
		writeError(w, storageStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

func (s *Server) folderOrWorkspace(r *http.Request) string {
	if folder := r.URL.Query().Get("folder"); folder != "" {
		return folder
	}
	return s.workspace
}

func storageStatus(err error) int {
	if errors.Is(err, storage.ErrInvalidName) || errors.Is(err, storage.ErrUnknownKind) {
		return http.StatusBadRequest
	}
	var statusErr *storage.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
