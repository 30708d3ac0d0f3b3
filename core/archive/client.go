package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response body is kept for
// error reporting.
const maxErrorBody = 4096

// Client defines the interface for archive record operations.
type Client interface {
	// CreateRecord creates a new draft record from a full metadata payload.
	CreateRecord(ctx context.Context, payload Document) (Document, error)
	// CreateDraft creates a draft from a published record.
	// The draft belongs to the same version and keeps the record id.
	CreateDraft(ctx context.Context, recordID string) (Document, error)
	// CreateVersion creates a draft for a new version of a published record.
	// The draft receives a new record id.
	CreateVersion(ctx context.Context, recordID string) (Document, error)
	// GetDraft gets a draft's metadata.
	GetDraft(ctx context.Context, recordID string) (Document, error)
	// PutDraft replaces a draft's metadata.
	PutDraft(ctx context.Context, recordID string, draft Document) (Document, error)
	// DeleteDraft deletes a draft.
	DeleteDraft(ctx context.Context, recordID string) error
	// Publish publishes a draft, freezing the version.
	Publish(ctx context.Context, recordID string) (Document, error)
	// GetRecord gets a published record's metadata.
	GetRecord(ctx context.Context, recordID string) (Document, error)
	// ListRecords gets published records visible to the user.
	ListRecords(ctx context.Context, allVersions bool, size int) (Document, error)
	// ListUserRecords gets the user's own records, drafts included.
	ListUserRecords(ctx context.Context, allVersions bool, size int) (Document, error)
	// ListFiles lists the files linked to a draft, with checksums.
	ListFiles(ctx context.Context, recordID string) ([]FileEntry, error)
	// RegisterFiles declares file keys on a draft ahead of content upload.
	RegisterFiles(ctx context.Context, recordID string, keys []string) error
	// UploadFileContent uploads the content of a registered file.
	UploadFileContent(ctx context.Context, recordID, key string, content io.Reader) error
	// CommitFile completes the upload of a file's content.
	CommitFile(ctx context.Context, recordID, key string) error
	// DeleteFile removes a file link from a draft.
	DeleteFile(ctx context.Context, recordID, key string) error
	// ImportFiles imports all file links of the previous published
	// version into a new-version draft without re-uploading content.
	ImportFiles(ctx context.Context, recordID string) error
}

// NewClient creates an archive API client from the configuration.
func NewClient(cfg Config) Client {
	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Create custom transport with strict timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &httpClient{
		baseURL: cfg.BaseURL(),
		token:   cfg.Token,
		client:  &http.Client{Transport: transport},
	}
}

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func (c *httpClient) CreateRecord(ctx context.Context, payload Document) (Document, error) {
	return c.doJSON(ctx, http.MethodPost, "/api/records", payload)
}

func (c *httpClient) CreateDraft(ctx context.Context, recordID string) (Document, error) {
	return c.doJSON(ctx, http.MethodPost, recordPath(recordID, "/draft"), nil)
}

func (c *httpClient) CreateVersion(ctx context.Context, recordID string) (Document, error) {
	return c.doJSON(ctx, http.MethodPost, recordPath(recordID, "/versions"), nil)
}

func (c *httpClient) GetDraft(ctx context.Context, recordID string) (Document, error) {
	return c.doJSON(ctx, http.MethodGet, recordPath(recordID, "/draft"), nil)
}

func (c *httpClient) PutDraft(ctx context.Context, recordID string, draft Document) (Document, error) {
	return c.doJSON(ctx, http.MethodPut, recordPath(recordID, "/draft"), draft)
}

func (c *httpClient) DeleteDraft(ctx context.Context, recordID string) error {
	return c.doDiscard(ctx, http.MethodDelete, recordPath(recordID, "/draft"), nil, "")
}

func (c *httpClient) Publish(ctx context.Context, recordID string) (Document, error) {
	return c.doJSON(ctx, http.MethodPost, recordPath(recordID, "/draft/actions/publish"), nil)
}

func (c *httpClient) GetRecord(ctx context.Context, recordID string) (Document, error) {
	return c.doJSON(ctx, http.MethodGet, recordPath(recordID, ""), nil)
}

func (c *httpClient) ListRecords(ctx context.Context, allVersions bool, size int) (Document, error) {
	path := fmt.Sprintf("/api/records?allversions=%s&size=%d", strconv.FormatBool(allVersions), size)
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

func (c *httpClient) ListUserRecords(ctx context.Context, allVersions bool, size int) (Document, error) {
	path := fmt.Sprintf("/api/user/records?allversions=%s&size=%d", strconv.FormatBool(allVersions), size)
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

func (c *httpClient) ListFiles(ctx context.Context, recordID string) ([]FileEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, recordPath(recordID, "/draft/files"), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Entries []FileEntry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode file listing for record %s: %w", recordID, err)
	}
	return payload.Entries, nil
}

func (c *httpClient) RegisterFiles(ctx context.Context, recordID string, keys []string) error {
	payload := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		payload = append(payload, map[string]string{"key": key})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode file keys: %w", err)
	}
	return c.doDiscard(ctx, http.MethodPost, recordPath(recordID, "/draft/files"), bytes.NewReader(data), "application/json")
}

func (c *httpClient) UploadFileContent(ctx context.Context, recordID, key string, content io.Reader) error {
	path := recordPath(recordID, "/draft/files/"+url.PathEscape(key)+"/content")
	return c.doDiscard(ctx, http.MethodPut, path, content, "application/octet-stream")
}

func (c *httpClient) CommitFile(ctx context.Context, recordID, key string) error {
	path := recordPath(recordID, "/draft/files/"+url.PathEscape(key)+"/commit")
	return c.doDiscard(ctx, http.MethodPost, path, nil, "")
}

func (c *httpClient) DeleteFile(ctx context.Context, recordID, key string) error {
	path := recordPath(recordID, "/draft/files/"+url.PathEscape(key))
	return c.doDiscard(ctx, http.MethodDelete, path, nil, "")
}

func (c *httpClient) ImportFiles(ctx context.Context, recordID string) error {
	return c.doDiscard(ctx, http.MethodPost, recordPath(recordID, "/draft/actions/files-import"), nil, "")
}

// recordPath builds the resource path for a record id with an optional
// sub-resource suffix.
func recordPath(recordID, suffix string) string {
	return "/api/records/" + url.PathEscape(recordID) + suffix
}

// do performs a request and maps non-2xx responses to *StatusError.
// On success the caller owns the response body.
func (c *httpClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", fullURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     method,
			URL:        fullURL,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	return resp, nil
}

// doJSON performs a request with an optional JSON payload and decodes the
// JSON response body into a Document.
func (c *httpClient) doJSON(ctx context.Context, method, path string, payload any) (Document, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return doc, nil
}

// doDiscard performs a request and drains the response body.
func (c *httpClient) doDiscard(ctx context.Context, method, path string, body io.Reader, contentType string) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
