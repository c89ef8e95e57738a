package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout applies to every request on a client unless overridden.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of a response body is read.
const maxResponseBody = 4 << 20

// Config holds the configuration of a single backend client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Clients holds one client per backend service
type Clients struct {
	Auth    *Client
	Profile *Client
}

// NewClients creates the auth and profile clients. Both share the token
// source and the unauthorized notifier.
func NewClients(auth, profile Config, tokens TokenSource, notifier UnauthorizedNotifier, opts ...Option) (*Clients, error) {
	authClient, err := New("auth", auth, tokens, notifier, opts...)
	if err != nil {
		return nil, err
	}

	profileClient, err := New("profile", profile, tokens, notifier, opts...)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Auth:    authClient,
		Profile: profileClient,
	}, nil
}

type options struct {
	transport http.RoundTripper
}

// Option customises a client.
type Option func(*options)

// WithTransport sets the base transport requests are sent through.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// Client issues JSON requests against one backend.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// New creates a client bound to cfg.BaseURL. Every request passes through
// the bearer and unauthorized interceptors.
func New(name string, cfg Config, tokens TokenSource, notifier UnauthorizedNotifier, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base URL: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s base URL %q: must be absolute", name, cfg.BaseURL)
	}

	o := &options{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = &unauthorizedTransport{
		service:  name,
		notifier: notifier,
		next:     o.transport,
	}
	transport = &bearerTransport{tokens: tokens, next: transport}
	transport = &loggingTransport{service: name, next: transport}
	transport = otelhttp.NewTransport(transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return name + " " + r.Method + " " + r.URL.Path
		}),
	)

	return &Client{
		name:    name,
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// Name returns the service name the client was created with.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the base address of the backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with body encoded as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Do sends a single request. It never retries. Non-2xx responses are
// returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
