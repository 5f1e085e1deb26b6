package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oapilot/agent-engine/internal/logging"
)

// storageServer fakes the storage service and records every request.
type storageServer struct {
	t        *testing.T
	files    []FileInfo
	template []byte

	requests  []string
	uploads   map[string][]byte
	deleteErr int // non-zero forces that status on DELETE
}

func newStorageServer(t *testing.T) (*storageServer, *httptest.Server) {
	s := &storageServer{
		t:        t,
		template: []byte("template-bytes"),
		uploads:  map[string][]byte{},
	}
	ts := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *storageServer) handle(w http.ResponseWriter, r *http.Request) {
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	switch {
	case r.URL.Path == "/example/files":
		json.NewEncoder(w).Encode(s.files)
	case r.URL.Path == "/example/folders":
		json.NewEncoder(w).Encode([]string{"workspace", "shared"})
	case r.URL.Path == "/example/download":
		w.Write([]byte("content-of-" + r.URL.Query().Get("fileName")))
	case r.URL.Path == "/example/upload":
		file, header, err := r.FormFile("uploadedFile")
		if err != nil {
			s.t.Errorf("upload without uploadedFile field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		s.uploads[header.Filename] = content
		w.WriteHeader(http.StatusCreated)
	case r.URL.Path == "/example/file" && r.Method == http.MethodDelete:
		if s.deleteErr != 0 {
			w.WriteHeader(s.deleteErr)
			return
		}
		w.WriteHeader(http.StatusOK)
	case strings.HasPrefix(r.URL.Path, "/sample/example"):
		w.Write(s.template)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestListFiles(t *testing.T) {
	srv, ts := newStorageServer(t)
	srv.files = []FileInfo{{Title: "Report.docx", PureContentLength: 10}}
	client := New(ts.URL, "", logging.Nop())

	files, err := client.ListFiles(context.Background(), "workspace")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Title != "Report.docx" {
		t.Fatalf("unexpected listing: %+v", files)
	}
}

func TestCreateFileSanitizesName(t *testing.T) {
	srv, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	created, err := client.Create(context.Background(), "excel", " Q3 Report ", "workspace")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Filename != "Q3Report.xlsx" {
		t.Fatalf("expected Q3Report.xlsx, got %s", created.Filename)
	}
	uploaded, ok := srv.uploads["Q3Report.xlsx"]
	if !ok {
		t.Fatalf("template was not uploaded, uploads: %v", srv.uploads)
	}
	if string(uploaded) != string(srv.template) {
		t.Errorf("uploaded bytes differ from template")
	}
}

func TestCreateFileRejectsEmptyName(t *testing.T) {
	srv, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	_, err := client.Create(context.Background(), "word", "   ", "workspace")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if len(srv.requests) != 0 {
		t.Errorf("no requests expected for an invalid name, got %v", srv.requests)
	}
}

func TestCreateFileUnknownKind(t *testing.T) {
	_, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	_, err := client.Create(context.Background(), "markdown", "notes", "workspace")
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRenameToSameNameIsNoOp(t *testing.T) {
	srv, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	result, err := client.Rename(context.Background(), "Report.docx", "Report", "workspace")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if result.NewFilename != "Report.docx" || !result.Unchanged {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.OldFileRemoved {
		t.Error("nothing was removed, OldFileRemoved must be false")
	}
	if len(srv.requests) != 0 {
		t.Errorf("no-op rename must not touch the network, got %v", srv.requests)
	}
}

func TestRenamePreservesContentAndExtension(t *testing.T) {
	srv, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	result, err := client.Rename(context.Background(), "Old Name.xlsx", "Budget 2026", "workspace")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if result.NewFilename != "Budget2026.xlsx" {
		t.Fatalf("expected Budget2026.xlsx, got %s", result.NewFilename)
	}
	if !result.OldFileRemoved || result.Warning != "" {
		t.Fatalf("expected clean rename, got %+v", result)
	}
	uploaded := srv.uploads["Budget2026.xlsx"]
	if string(uploaded) != "content-of-Old Name.xlsx" {
		t.Errorf("uploaded bytes are not the downloaded content: %q", uploaded)
	}
}

func TestRenameSurvivesDeleteFailure(t *testing.T) {
	srv, ts := newStorageServer(t)
	srv.deleteErr = http.StatusInternalServerError
	client := New(ts.URL, "", logging.Nop())

	result, err := client.Rename(context.Background(), "Report.docx", "Final", "workspace")
	if err != nil {
		t.Fatalf("rename with failing delete should still succeed, got %v", err)
	}
	if result.OldFileRemoved {
		t.Error("OldFileRemoved should be false")
	}
	if !strings.Contains(result.Warning, "Report.docx") {
		t.Errorf("warning should name the leftover file, got %q", result.Warning)
	}
}

func TestRenameRejectsEmptyNewName(t *testing.T) {
	srv, ts := newStorageServer(t)
	client := New(ts.URL, "", logging.Nop())

	_, err := client.Rename(context.Background(), "Report.docx", " \t ", "workspace")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if len(srv.requests) != 0 {
		t.Errorf("no requests expected, got %v", srv.requests)
	}
}

func TestDeleteReportsStatus(t *testing.T) {
	srv, ts := newStorageServer(t)
	srv.deleteErr = http.StatusNotFound
	client := New(ts.URL, "", logging.Nop())

	err := client.Delete(context.Background(), "missing.docx", "workspace")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestDownloadURLUsesFileNameCasing(t *testing.T) {
	client := New("http://store", "", logging.Nop())
	link := client.DownloadURL("Report.docx", "workspace")
	if !strings.Contains(link, "fileName=Report.docx") {
		t.Errorf("download link must use fileName, got %s", link)
	}
	if !strings.Contains(link, "folder=workspace") {
		t.Errorf("download link missing folder, got %s", link)
	}
}
