// Package storage is the HTTP client for the document storage service.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const uploadField = "uploadedFile"

var (
	ErrInvalidName = errors.New("storage: invalid file name")
	ErrUnknownKind = errors.New("storage: unknown file type")
)

// extensions maps document kinds to the file extension and template
// used when creating a new file.
var extensions = map[string]string{
	"word":  ".docx",
	"excel": ".xlsx",
	"ppt":   ".pptx",
	"pdf":   ".pdf",
}

// StatusError reports a non-2xx answer from the storage service.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// FileInfo mirrors one entry of the storage service's file listing.
type FileInfo struct {
	Version           int    `json:"version"`
	ID                string `json:"id"`
	ContentLength     string `json:"contentLength"`
	PureContentLength int64  `json:"pureContentLength"`
	Title             string `json:"title"`
	Updated           string `json:"updated"`
}

// CreateResult describes a file created from a template.
type CreateResult struct {
	Filename string `json:"filename"`
	Folder   string `json:"folder,omitempty"`
	Kind     string `json:"kind"`
}

// RenameResult describes the outcome of a rename. A rename that copied
// the content but failed to remove the original is still a success, with
// OldFileRemoved false and Warning populated. Unchanged marks a rename
// to the file's current name, which performs no work at all.
type RenameResult struct {
	OldFilename    string `json:"oldFilename"`
	NewFilename    string `json:"newFilename"`
	OldFileRemoved bool   `json:"oldFileRemoved"`
	Unchanged      bool   `json:"unchanged,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

// Client talks to the storage service. templateURL is where blank
// document templates are fetched from; it defaults to the service base.
type Client struct {
	baseURL     string
	templateURL string
	client      *http.Client
	logger      *slog.Logger
}

func New(baseURL, templateURL string, logger *slog.Logger) *Client {
	if templateURL == "" {
		templateURL = baseURL
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		templateURL: strings.TrimSuffix(templateURL, "/"),
		client:      &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
	}
}

// ListFiles returns the files in the given folder. An empty folder asks
// the service for its default listing.
func (c *Client) ListFiles(ctx context.Context, folder string) ([]FileInfo, error) {
	endpoint := c.baseURL + "/example/files"
	if folder != "" {
		endpoint += "?folder=" + url.QueryEscape(folder)
	}
	var files []FileInfo
	if err := c.getJSON(ctx, "list files", endpoint, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// ListFolders returns the folders known to the service.
func (c *Client) ListFolders(ctx context.Context) ([]string, error) {
	var folders []string
	if err := c.getJSON(ctx, "list folders", c.baseURL+"/example/folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// DownloadURL builds the direct download link for a stored file. The
// service expects the fileName casing on this endpoint.
func (c *Client) DownloadURL(filename, folder string) string {
	q := url.Values{}
	q.Set("fileName", filename)
	if folder != "" {
		q.Set("folder", folder)
	}
	return c.baseURL + "/example/download?" + q.Encode()
}

// Download fetches a stored file's content.
func (c *Client) Download(ctx context.Context, filename, folder string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(filename, folder), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readStatusError("download", resp)
	}
	return io.ReadAll(resp.Body)
}

// Upload stores content under the given file name.
func (c *Client) Upload(ctx context.Context, filename, folder string, content []byte) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(uploadField, filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}
	endpoint := c.baseURL + "/example/upload"
	if folder != "" {
		endpoint += "?folder=" + url.QueryEscape(folder)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readStatusError("upload", resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Delete removes a stored file.
func (c *Client) Delete(ctx context.Context, filename, folder string) error {
	q := url.Values{}
	q.Set("filename", filename)
	if folder != "" {
		q.Set("folder", folder)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/example/file?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readStatusError("delete", resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Create makes a new document of the given kind from its blank template
// and uploads it under the sanitized name.
func (c *Client) Create(ctx context.Context, kind, name, folder string) (CreateResult, error) {
	ext, ok := extensions[kind]
	if !ok {
		return CreateResult{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	base, err := sanitizeName(name)
	if err != nil {
		return CreateResult{}, err
	}
	template, err := c.fetchTemplate(ctx, ext)
	if err != nil {
		return CreateResult{}, err
	}
	filename := base + ext
	if err := c.Upload(ctx, filename, folder, template); err != nil {
		return CreateResult{}, err
	}
	c.logger.Info("created document", "file", filename, "kind", kind, "folder", folder)
	return CreateResult{Filename: filename, Folder: folder, Kind: kind}, nil
}

// Rename gives a stored file a new base name, keeping its extension.
// Renaming to the current name is a no-op. The service has no rename
// endpoint, so this is download, upload, delete; a delete failure after
// a successful upload is downgraded to a warning on the result.
func (c *Client) Rename(ctx context.Context, oldFilename, newName, folder string) (RenameResult, error) {
	base, err := sanitizeName(newName)
	if err != nil {
		return RenameResult{}, err
	}
	newFilename := base + path.Ext(oldFilename)
	if newFilename == oldFilename {
		return RenameResult{OldFilename: oldFilename, NewFilename: newFilename, Unchanged: true}, nil
	}
	content, err := c.Download(ctx, oldFilename, folder)
	if err != nil {
		return RenameResult{}, fmt.Errorf("rename: %w", err)
	}
	if err := c.Upload(ctx, newFilename, folder, content); err != nil {
		return RenameResult{}, fmt.Errorf("rename: %w", err)
	}
	result := RenameResult{OldFilename: oldFilename, NewFilename: newFilename, OldFileRemoved: true}
	if err := c.Delete(ctx, oldFilename, folder); err != nil {
		c.logger.Warn("rename left the original file behind", "file", oldFilename, "error", err)
		result.OldFileRemoved = false
		result.Warning = fmt.Sprintf("copy created as %s but the original %s could not be removed: %v", newFilename, oldFilename, err)
	}
	return result, nil
}

func (c *Client) fetchTemplate(ctx context.Context, ext string) ([]byte, error) {
	endpoint := c.templateURL + "/sample/example" + ext
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage template fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readStatusError("template fetch", resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readStatusError(op, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readStatusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// sanitizeName trims and strips all whitespace from a user-supplied base
// name. It never touches existing filenames used for lookup.
func sanitizeName(name string) (string, error) {
	cleaned := strings.Join(strings.Fields(name), "")
	if cleaned == "" {
		return "", ErrInvalidName
	}
	return cleaned, nil
}
