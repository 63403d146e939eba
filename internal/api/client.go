// Package api is the transport client for the finflow REST backend and the
// per-resource services built on it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/Veraticus/finflow/internal/common"
)

func init() {
	// The backend reads valor as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// Error is a non-2xx response from the backend.
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets a 404 match common.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == common.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client issues JSON requests against the backend base URL. Calls flagged as
// authenticated go through an oauth2 transport that attaches the bearer token.
type Client struct {
	plain   *http.Client
	authed  *http.Client
	baseURL string
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base    http.RoundTripper
	timeout time.Duration
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.base = rt }
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// NewClient creates a client for baseURL. tokens may be nil, in which case
// authenticated calls fail with common.ErrNotAuthenticated.
func NewClient(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	o := clientOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	if tokens == nil {
		tokens = missingTokenSource{}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		plain:   &http.Client{Transport: o.base, Timeout: o.timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: o.base},
			Timeout:   o.timeout,
		},
	}
}

type missingTokenSource struct{}

func (missingTokenSource) Token() (*oauth2.Token, error) {
	return nil, common.ErrNotAuthenticated
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request. body, when non-nil, is encoded as JSON; out, when
// non-nil, receives the decoded response. A 204 leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	httpClient := c.plain
	if auth {
		httpClient = c.authed
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return common.ErrNotAuthenticated
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = fmt.Sprintf("error processing request (HTTP %d)", resp.StatusCode)
	}
	return apiErr
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out, true)
	return out, err
}

func post[T any](ctx context.Context, c *Client, path string, body any, auth bool) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out, auth)
	return out, err
}

func put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out, true)
	return out, err
}

func del(ctx context.Context, c *Client, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, true)
}
