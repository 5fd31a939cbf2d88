// Package restclient performs single HTTP calls against the hosted backend:
// PostgREST tables under /rest/v1, RPC functions and the storage API.
package restclient

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/middleware/requestid"
)

const (
	// RESTPrefix is the table API root.
	RESTPrefix = "/rest/v1"

	defaultTimeout = 30 * time.Second
)

var successMarker = json.RawMessage(`{"success":true}`)

// Config configures the backend connection.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Observer is notified after every backend call.
type Observer func(method, resource string, status int, duration time.Duration)

// Option customises the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a metrics hook.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Request describes one backend call. Path is relative to the base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Raw     io.Reader
	Headers map[string]string
	// ContentType overrides the JSON content type, used with Raw bodies.
	ContentType string
	// Timeout overrides the client timeout for this call.
	Timeout time.Duration
}

// Response is a normalised backend response.
type Response struct {
	Status int
	Body   json.RawMessage
}

// IsNull reports a 204 response.
func (r *Response) IsNull() bool {
	return r == nil || len(r.Body) == 0
}

// IsSuccessMarker reports a 201 response that carried no body.
func (r *Response) IsSuccessMarker() bool {
	return r != nil && bytes.Equal(r.Body, successMarker)
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	if r.IsNull() {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "failed to decode backend response")
	}
	return nil
}

// Client issues authenticated requests against the backend.
type Client struct {
	baseURL  string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	observer Observer
}

// New constructs a Client.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// REST calls a table endpoint under /rest/v1.
func (c *Client) REST(ctx context.Context, method, resource string, query url.Values, body interface{}) (*Response, error) {
	req := Request{
		Method: method,
		Path:   RESTPrefix + "/" + strings.TrimLeft(resource, "/"),
		Query:  query,
		Body:   body,
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Headers = map[string]string{"Prefer": "return=representation"}
	}
	return c.Do(ctx, req)
}

// RPC invokes a backend SQL function.
func (c *Client) RPC(ctx context.Context, fn string, args interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: RESTPrefix + "/rpc/" + fn, Body: args})
}

// Do performs one request. It never retries.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	timeout := c.timeout
	if r.Timeout > 0 {
		timeout = r.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}

	httpReq, err := c.build(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(r, 0, start)
		c.logger.Warn("backend request failed", zap.String("method", r.Method), zap.String("path", r.Path), zap.Error(err))
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	c.observe(r, resp.StatusCode, start)
	if err != nil {
		return nil, transportError(err)
	}

	return normalize(resp.StatusCode, payload)
}

func (c *Client) build(ctx context.Context, r Request) (*http.Request, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case r.Raw != nil:
		body = r.Raw
		if r.ContentType != "" {
			contentType = r.ContentType
		}
	case r.Body != nil:
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) observe(r Request, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer(r.Method, resourceOf(r.Path), status, time.Since(start))
}

func normalize(status int, payload []byte) (*Response, error) {
	if status < 200 || status >= 300 {
		return nil, appErrors.Backend(status, serverMessage(payload))
	}
	if status == http.StatusNoContent {
		return &Response{Status: status}, nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		if status == http.StatusCreated {
			return &Response{Status: status, Body: successMarker}, nil
		}
		return nil, appErrors.Clone(appErrors.ErrParse, "backend returned an empty body")
	}
	if !json.Valid(payload) {
		return nil, appErrors.Clone(appErrors.ErrParse, "backend returned invalid JSON")
	}
	return &Response{Status: status, Body: payload}, nil
}

// serverMessage extracts the human message from a PostgREST or storage error body.
func serverMessage(payload []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return strings.TrimSpace(string(payload))
	}
	for _, key := range []string{"message", "error_description", "msg", "error"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func transportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	case errors.Is(err, context.Canceled):
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "backend request cancelled")
	default:
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
}

// resourceOf reduces a path to a low-cardinality label, e.g. "rest/activities".
func resourceOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 3 && parts[0] == "rest" && parts[2] == "rpc" && len(parts) >= 4:
		return "rpc/" + parts[3]
	case len(parts) >= 3 && parts[0] == "rest":
		return "rest/" + parts[2]
	case len(parts) >= 4 && parts[0] == "storage":
		if parts[3] == "public" && len(parts) >= 5 {
			return "storage/" + parts[4]
		}
		return "storage/" + parts[3]
	default:
		return fmt.Sprintf("other/%s", parts[0])
	}
}
