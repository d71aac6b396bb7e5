// ABOUTME: HTTP client for the inventory administration API
// ABOUTME: Attaches the bearer token to every call and maps API errors for CLI and TUI usage

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnauthorized is wrapped by errors for responses with status 401
var ErrUnauthorized = errors.New("unauthorized")

// DefaultTimeout bounds every request unless overridden with WithTimeout
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer credential for outbound requests.
// An empty token means the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() string

// Token implements TokenSource
func (f TokenFunc) Token() string { return f() }

// Client is the API client for the inventory backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where the client reads the bearer token from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// errorResponse covers both error payload shapes the backend produces
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login calls POST /api/auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	in := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &resp, nil
}

// SearchUsers calls GET /api/users/search with a partial email match
func (c *Client) SearchUsers(ctx context.Context, partialEmail string) ([]User, error) {
	var users []User
	path := "/api/users/search?email=" + url.QueryEscape(partialEmail)
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserByEmail calls GET /api/users/by-email and returns the exact match
func (c *Client) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	path := "/api/users/by-email?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "user not found"}
	}
	return &user, nil
}

// Locations calls GET /api/locations
func (c *Client) Locations(ctx context.Context) ([]CatalogItem, error) {
	return c.catalog(ctx, "/api/locations")
}

// Statuses calls GET /api/statuses
func (c *Client) Statuses(ctx context.Context) ([]CatalogItem, error) {
	return c.catalog(ctx, "/api/statuses")
}

// Brands calls GET /api/brands
func (c *Client) Brands(ctx context.Context) ([]CatalogItem, error) {
	return c.catalog(ctx, "/api/brands")
}

// Models calls GET /api/models
func (c *Client) Models(ctx context.Context) ([]CatalogItem, error) {
	return c.catalog(ctx, "/api/models")
}

func (c *Client) catalog(ctx context.Context, path string) ([]CatalogItem, error) {
	var items []CatalogItem
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Devices calls GET /api/devices
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// CreateDevice calls POST /api/devices
func (c *Client) CreateDevice(ctx context.Context, in *DevicePayload) (*Device, error) {
	var device Device
	if err := c.do(ctx, http.MethodPost, "/api/devices", in, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateDevice calls PUT /api/devices/{id}
func (c *Client) UpdateDevice(ctx context.Context, id int, in *DevicePayload) (*Device, error) {
	var device Device
	if err := c.do(ctx, http.MethodPut, "/api/devices/"+strconv.Itoa(id), in, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice calls DELETE /api/devices/{id}
func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/devices/"+strconv.Itoa(id), nil, nil)
}

// do sends one JSON request and decodes the JSON answer into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := bearer(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// bearer strips any "Bearer " prefix so it can be reattached exactly once
func bearer(token string) string {
	token = strings.TrimSpace(token)
	for len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", context.Canceled)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Message = errResp.Message
		if apiErr.Message == "" {
			apiErr.Message = errResp.Error
		}
	}
	return apiErr
}
