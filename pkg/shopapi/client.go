package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/metrics"
)

const (
	apiPrefix                = "/api"
	responseBodyReadLimit    = 8 << 20
	defaultTimeout           = 15 * time.Second
	nonJSONResponseMessage   = "An unexpected non-JSON response was received."
	httpStatusMessagePattern = "HTTP error! status: %d"
)

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// TokenSource yields the bearer token attached to each request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client talks to the shop REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	metrics    *metrics.UpstreamMetrics
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource sets the source of bearer tokens.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithMetrics records request duration and failures.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger enables debug logging of each request.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds a client for the API hosted at baseURL. Endpoints are
// resolved under baseURL + "/api".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop api base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// WithTokenSource returns a copy of the client bound to ts. The underlying
// HTTP client and metrics are shared.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// BaseURL returns the API host the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, out)
}

// FilePart is one file of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Form is a multipart payload. Fields keep insertion order.
type Form struct {
	Fields [][2]string
	Files  []FilePart
}

// Add appends a text field.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, [2]string{name, value})
}

func (c *Client) PostForm(ctx context.Context, endpoint string, form Form, out any) error {
	return c.doForm(ctx, http.MethodPost, endpoint, form, out)
}

func (c *Client) PutForm(ctx context.Context, endpoint string, form Form, out any) error {
	return c.doForm(ctx, http.MethodPut, endpoint, form, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, endpoint, reader, contentType, out)
}

func (c *Client) doForm(ctx context.Context, method, endpoint string, form Form, out any) error {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, field := range form.Fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write form field")
		}
	}
	for _, file := range form.Files {
		if file.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create form file")
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy form file")
		}
	}
	if err := w.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close multipart writer")
	}
	return c.do(ctx, method, endpoint, buf, w.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "shop api client not configured")
	}
	route := routeLabel(endpoint)

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "resolve auth token")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(method, route, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(method, route, 0)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s failed", method, route))
	}
	defer func() { _ = resp.Body.Close() }()

	if c.logg != nil {
		c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
			"upstream_method": method,
			"upstream_route":  route,
			"upstream_status": resp.StatusCode,
			"duration_ms":     time.Since(start).Milliseconds(),
		}), "upstream.request")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		c.metrics.IncFailure(method, route, resp.StatusCode)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		c.metrics.IncFailure(method, route, resp.StatusCode)
		return newStatusError(resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return nil
	}
	if !json.Valid(raw) {
		return pkgerrors.New(pkgerrors.CodeDependency, nonJSONResponseMessage)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) buildURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + apiPrefix + endpoint
}

// routeLabel collapses numeric path segments so metrics stay low-cardinality.
func routeLabel(endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}
