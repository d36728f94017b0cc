// internal/client/client.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aaronwald/rawdash/internal/types"
	"github.com/google/uuid"
)

const (
	SummaryPath     = "/api/raw/dashboard/summary"
	FilePathPrefix  = "/api/raw/dashboard/file/"
	DefaultRowLimit = 20

	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)

// RequestError is returned for any non-2xx response
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("Request failed (%d): %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

// Config holds everything the client needs; nothing is read from the environment
type Config struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
}

// Client calls the dashboard endpoints
type Client struct {
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// New creates a client for the given base URL
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}, nil
}

// FetchSummary retrieves the dataset inventory summary
func (c *Client) FetchSummary(ctx context.Context) (*types.SummaryPayload, error) {
	var out types.SummaryPayload
	if err := c.getJSON(ctx, c.endpoint(SummaryPath, nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchFilePreview retrieves up to rowLimit rows of fileName.
// A rowLimit of zero or less uses DefaultRowLimit.
func (c *Client) FetchFilePreview(ctx context.Context, fileName string, rowLimit int) (*types.PreviewPayload, error) {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	q := url.Values{}
	q.Set("rows", strconv.Itoa(rowLimit))

	var out types.PreviewPayload
	if err := c.getJSON(ctx, c.endpoint(FilePathPrefix+url.PathEscape(fileName), q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// endpoint joins an escaped path onto the base URL
func (c *Client) endpoint(escapedPath string, query url.Values) string {
	u := *c.baseURL
	// The escaped form must survive, so build RawPath alongside Path
	rawPath := strings.TrimRight(u.EscapedPath(), "/") + escapedPath
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		path = rawPath
	}
	u.Path = path
	u.RawPath = rawPath
	u.RawQuery = query.Encode()
	return u.String()
}

// getJSON executes a GET and decodes a 2xx JSON body into out
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.New().String())
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("reading error body (status %d): %w", resp.StatusCode, readErr)
		}
		return &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
