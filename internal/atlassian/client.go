// Package atlassian provides authenticated HTTP access to an Atlassian Cloud
// site. The Jira and Assets clients are built on top of it.
package atlassian

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/telemetry"
)

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 30 * time.Second

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(e.Body))
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client issues authenticated requests against one Atlassian site. Requests
// are serialized: at most one is in flight per Client.
type Client struct {
	Site       string
	Email      string
	APIToken   string
	UserAgent  string
	HTTPClient *http.Client

	inflight *semaphore.Weighted
}

// NewClient creates a client for site (e.g. "https://company.atlassian.net").
// api labels the client's telemetry.
func NewClient(site, email, apiToken, api string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Site:      strings.TrimSuffix(site, "/"),
		Email:     email,
		APIToken:  apiToken,
		UserAgent: "assetlink/1.0",
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: telemetry.WrapTransport(http.DefaultTransport, api),
		},
		inflight: semaphore.NewWeighted(1),
	}
}

// WithEndpoint points the client at a different base URL (tests use this to
// target an httptest server) and returns the client.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.Site = strings.TrimSuffix(endpoint, "/")
	return c
}

// URL joins path onto the site base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.Site + path
}

// GetJSON issues a GET for path and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	body, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostJSON POSTs in as JSON and decodes the response into out (if non-nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.Do(ctx, http.MethodPost, path, data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

// PutJSON PUTs in as JSON, discarding the response body.
func (c *Client) PutJSON(ctx context.Context, path string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	_, err = c.Do(ctx, http.MethodPut, path, data)
	return err
}

// Do executes an authenticated request and returns the response body.
// A 204 No Content response returns a nil body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.Site == "" {
		return nil, fmt.Errorf("atlassian site URL not configured")
	}
	if c.APIToken == "" {
		return nil, fmt.Errorf("atlassian API token not configured")
	}

	if c.inflight != nil {
		if err := c.inflight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.inflight.Release(1)
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	apiURL := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	debug.Logf("http: %s %s\n", method, apiURL)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Method:     method,
			URL:        apiURL,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return respBody, nil
}

// setAuth sets Basic auth for Cloud (email + API token) or Bearer auth for a
// bare personal access token.
func (c *Client) setAuth(req *http.Request) {
	if c.Email != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Email + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
}

func decode(body []byte, out any) error {
	if len(body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
