package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/n0madic/go-chorus/internal/auth"
	"github.com/n0madic/go-chorus/internal/config"
)

// maxResponseBytes bounds non-streaming response bodies.
const maxResponseBytes = 32 << 20

const userAgent = "go-chorus"

// Client talks to the Chorus REST API rooted at the configured base URL.
type Client struct {
	cfg    *config.ClientConfig
	http   *http.Client
	stream *http.Client
	logger *slog.Logger

	retryBase time.Duration

	debug   bool
	dumpOut io.Writer
	dumpMu  sync.Mutex
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport   http.RoundTripper
	tokenSource oauth2.TokenSource
	tokenSet    bool
	logger      *slog.Logger
	retryBase   time.Duration
	dumpOut     io.Writer
}

// WithTransport sets the base round tripper (default http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTokenSource overrides the token source derived from the configuration.
// A nil source disables the Authorization header.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *clientOptions) {
		o.tokenSource = ts
		o.tokenSet = true
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithRetryBackoff sets the delay before the first retry. Later retries
// double it.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *clientOptions) { o.retryBase = d }
}

// WithDebugOutput sets where request and response dumps go when debug is
// enabled (default os.Stderr).
func WithDebugOutput(w io.Writer) Option {
	return func(o *clientOptions) { o.dumpOut = w }
}

// NewClient creates a client for cfg.
func NewClient(cfg *config.ClientConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{
		transport: http.DefaultTransport,
		logger:    slog.Default(),
		retryBase: 500 * time.Millisecond,
		dumpOut:   os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ts := o.tokenSource
	if !o.tokenSet {
		var err error
		ts, err = auth.TokenSource(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
	}

	rt := o.transport
	if ts != nil {
		rt = &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, ts), Base: rt}
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		// Uploads run as long as the backend keeps emitting events; the
		// stall timeout bounds silence instead.
		stream:    &http.Client{Transport: rt},
		logger:    o.logger,
		retryBase: o.retryBase,
		debug:     cfg.Debug,
		dumpOut:   o.dumpOut,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// doJSON sends a JSON request and decodes a JSON response into out. GET
// requests are retried on network errors and 5xx responses.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
	}

	send := func(ctx context.Context) error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.send(c.http, req, out)
	}

	if method == http.MethodGet {
		return c.withRetry(ctx, method, path, send)
	}
	return send(ctx)
}

// send performs one round trip. Non-2xx responses become *APIError.
func (c *Client) send(hc *http.Client, req *http.Request, out any) error {
	start := time.Now()
	c.dumpRequest(req)
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	c.dumpResponse(resp)
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.logger.Debug("api.request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-Id"),
		"elapsed", time.Since(start),
	)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(req, resp, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
