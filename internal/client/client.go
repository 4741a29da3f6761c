package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charlesng35/formstore/internal/database"
	"github.com/charlesng35/formstore/internal/models"
	"github.com/charlesng35/formstore/pkg/response"
)

// DefaultBaseURL is the address of a locally running API.
const DefaultBaseURL = "http://localhost:3001"

const defaultTimeout = 10 * time.Second

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	// Message is the server supplied error text. Empty when the body carried none.
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("client: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// HealthStatus mirrors the /api/health payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage"`
	Database  string `json:"database"`
	Entries   int64  `json:"entries"`
}

// DBTestResult mirrors the /api/db-test payload.
type DBTestResult struct {
	Connected bool                     `json:"connected"`
	Message   string                   `json:"message"`
	Result    *database.ProbeResult    `json:"result,omitempty"`
	Config    *database.ConnectionInfo `json:"config,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// Client talks to the entry API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// New creates a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base URL %q must include scheme and host", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateEntry submits value to POST /api/data. The value is sent as typed.
func (c *Client) CreateEntry(ctx context.Context, value string) (response.Created, error) {
	var created response.Created
	err := c.do(ctx, http.MethodPost, "/api/data", map[string]string{"value": value}, &created)
	return created, err
}

// ListEntries returns the most recent entries, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]models.Entry, error) {
	entries := []models.Entry{}
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Health fetches GET /api/health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &status)
	return status, err
}

// DBTest fetches GET /api/db-test.
func (c *Client) DBTest(ctx context.Context) (DBTestResult, error) {
	var result DBTestResult
	err := c.do(ctx, http.MethodGet, "/api/db-test", nil, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var payload response.ErrorBody
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
	}
	return apiErr
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
