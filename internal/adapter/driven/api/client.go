// Package api implements the backend ports over the predicTCR REST API. All
// calls share one *http.Client whose transport stamps the bearer credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.AuthAPI     = (*Client)(nil)
	_ driven.SettingsAPI = (*Client)(nil)
	_ driven.SampleAPI   = (*Client)(nil)
	_ driven.ArtifactAPI = (*Client)(nil)
)

// DefaultContentType is used for request bodies when none is configured.
const DefaultContentType = "application/json"

// AuthFaultHandler is invoked after a response with an authorization-class
// status has been received, before the error is returned to the caller.
// token is the credential the rejected request carried.
type AuthFaultHandler func(status int, token string)

// Client is the shared authenticated client for the backend.
type Client struct {
	http        *http.Client
	cache       *credentialCache
	baseURL     *url.URL
	contentType string
	saver       driven.FileSaver
	onAuthFault AuthFaultHandler
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAuthFaultHandler registers the callback run on status > 400 responses.
func WithAuthFaultHandler(h AuthFaultHandler) Option {
	return func(c *Client) { c.onAuthFault = h }
}

// WithFileSaver sets the destination for binary retrievals.
func WithFileSaver(s driven.FileSaver) Option {
	return func(c *Client) { c.saver = s }
}

// WithContentType overrides the content type of request bodies.
func WithContentType(ct string) Option {
	return func(c *Client) {
		if ct != "" {
			c.contentType = ct
		}
	}
}

// WithLogger sets the logger used for request and fault logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the following transport stack:
//  1. logging (request id, method, path, status, duration)
//  2. bearer (Authorization header from tokens at dispatch time)
//  3. credential cache (httpcache, one store per Authorization header)
//  4. http.DefaultTransport
func NewClient(baseURL string, tokens driven.TokenSource, opts ...Option) (*Client, error) {
	return NewClientWithTransport(baseURL, tokens, http.DefaultTransport, opts...)
}

// NewClientWithTransport creates a Client on top of a custom innermost
// transport. Tests pass an httptest server's transport here.
func NewClientWithTransport(baseURL string, tokens driven.TokenSource, base http.RoundTripper, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	// Endpoints are resolved relative to the base, which therefore must end in "/".
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:     u,
		contentType: DefaultContentType,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if base == nil {
		base = http.DefaultTransport
	}
	c.cache = newCredentialCache(base)
	c.http = &http.Client{
		Transport: &loggingTransport{
			logger: c.logger,
			next:   &bearerTransport{tokens: tokens, next: c.cache},
		},
	}

	return c, nil
}

// PurgeCache drops every cached response, for all credentials.
func (c *Client) PurgeCache() {
	c.cache.purgeAll()
}

// endpointURL resolves an endpoint name such as "settings" or "admin/result"
// against the base URL.
func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(endpoint, "/")}).String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	return req, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.doJSON(req, endpoint, out)
}

// postJSON encodes in as the request body and decodes the response into out.
// out may be nil when the response body carries nothing of interest.
func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("Accept", "application/json")

	return c.doJSON(req, endpoint, out)
}

func (c *Client) doJSON(req *http.Request, endpoint string, out any) error {
	resp, err := c.do(req, endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	// The cache only stores a response whose body was read to EOF.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
