package labdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"archive-manager/core/archive"
)

// maxErrorBody bounds how much of an error response body is kept for
// error reporting.
const maxErrorBody = 4096

// Client defines the interface for lab server database operations.
type Client interface {
	// Authenticate exchanges the configured credentials for an access token.
	Authenticate(ctx context.Context) (string, error)
	// Capabilities gets the capability schemas registered on the lab server.
	Capabilities(ctx context.Context, token string) (any, error)
	// AllRequests gets the measurement/computation requests placed by tenants.
	AllRequests(ctx context.Context, token string) (any, error)
	// ResultsForRequests gets the results posted for tenant requests.
	ResultsForRequests(ctx context.Context, token string) (any, error)
}

// NewClient creates a lab server API client from the configuration.
func NewClient(cfg Config) Client {
	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

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
		baseURL:  cfg.BaseURL(),
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Transport: transport},
	}
}

type httpClient struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func (c *httpClient) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("grant_type", "password")

	resp, err := c.do(ctx, http.MethodPost, "/user_management/authenticate", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode authentication response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("lab server returned an empty access token")
	}
	return payload.AccessToken, nil
}

func (c *httpClient) Capabilities(ctx context.Context, token string) (any, error) {
	return c.getJSON(ctx, "/capabilities", token)
}

func (c *httpClient) AllRequests(ctx context.Context, token string) (any, error) {
	return c.getJSON(ctx, "/all_requests", token)
}

func (c *httpClient) ResultsForRequests(ctx context.Context, token string) (any, error) {
	return c.getJSON(ctx, "/results_requested", token)
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *httpClient) getJSON(ctx context.Context, path, token string) (any, error) {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return payload, nil
}

// do performs a request and maps non-2xx responses to *archive.StatusError.
func (c *httpClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Response, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", fullURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
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
		return nil, &archive.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     method,
			URL:        fullURL,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	return resp, nil
}
