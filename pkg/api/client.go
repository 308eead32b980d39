// Package api is the REST client for the bot template service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dshills/botflow/pkg/session"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Credentials supplies the API host and tokens and accepts refreshed auth
// data. *session.Session implements it.
type Credentials interface {
	Host() string
	Token() string
	RefreshToken() string
	UpdateAuth(session.Auth) error
}

// Client talks to the bot template API.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithMetrics enables request metrics.
func WithMetrics(m *Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithRequestIDs replaces the X-Request-ID generator.
func WithRequestIDs(f func() string) Option {
	return func(cl *Client) { cl.requestID = f }
}

// NewClient creates a client that authenticates with creds.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		requestID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// request is one call to the API.
type request struct {
	method   string
	endpoint string
	body     any
	bearer   string
	// anonymous requests do not send the session token and are never
	// retried.
	anonymous bool
	// fallback is the error message used when a failed envelope has none.
	fallback string
	retried  bool
}

// Do sends a request to endpoint on the session host and decodes the
// envelope. A non-success envelope is returned as a *ResponseError. On
// HTTP 401 the token is refreshed once and the request retried; the
// retry's result is returned.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (*Envelope, error) {
	host := c.creds.Host()
	if host == "" {
		return nil, session.ErrNotLoggedIn
	}
	return c.do(ctx, host, request{
		method:   normalizeMethod(method),
		endpoint: normalizeEndpoint(endpoint),
		body:     body,
	})
}

func (c *Client) do(ctx context.Context, host string, req request) (*Envelope, error) {
	if !req.anonymous {
		req.bearer = c.creds.Token()
	}

	status, env, err := c.send(ctx, host, req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !req.anonymous && !req.retried && c.creds.RefreshToken() != "" {
		c.logger.Debug("access token rejected, refreshing", "endpoint", req.endpoint)
		if err := c.refresh(ctx, host); err != nil {
			return nil, fmt.Errorf("refreshing token: %w", err)
		}
		req.retried = true
		return c.do(ctx, host, req)
	}

	fallback := req.fallback
	if fallback == "" {
		fallback = http.StatusText(env.ResponseCode)
	}
	if err := env.Err(fallback); err != nil {
		return nil, err
	}
	return env, nil
}

// send performs one HTTP exchange and returns the status and envelope.
func (c *Client) send(ctx context.Context, host string, req request) (int, *Envelope, error) {
	var payload io.Reader
	if !isEmpty(req.body) {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	url := strings.TrimRight(host, "/") + "/" + req.endpoint
	httpReq, err := http.NewRequestWithContext(ctx, req.method, url, payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", c.requestID())
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.endpoint, 0, time.Since(start))
		return 0, nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	c.metrics.observe(req.endpoint, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api request",
		"method", req.method,
		"endpoint", req.endpoint,
		"status", httpResp.StatusCode,
		"request_id", httpReq.Header.Get("X-Request-ID"),
		"elapsed", time.Since(start))

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Proxies and gateways answer errors with plain text or HTML.
		if httpResp.StatusCode >= http.StatusBadRequest {
			return httpResp.StatusCode, &Envelope{ResponseCode: httpResp.StatusCode}, nil
		}
		return 0, nil, fmt.Errorf("unexpected response (status %d): %w", httpResp.StatusCode, err)
	}
	return httpResp.StatusCode, &env, nil
}

// refresh exchanges the refresh token for new auth data and stores it.
func (c *Client) refresh(ctx context.Context, host string) error {
	_, env, err := c.send(ctx, host, request{
		method:    http.MethodGet,
		endpoint:  "token/refresh",
		bearer:    c.creds.RefreshToken(),
		anonymous: true,
	})
	if err != nil {
		return err
	}
	if err := env.Err("token refresh failed"); err != nil {
		return err
	}
	auth, err := decodeAuth(env.Data)
	if err != nil {
		return err
	}
	return c.creds.UpdateAuth(auth)
}

// Login exchanges credentials for auth data. It does not touch the
// session; the caller decides whether to keep the result.
func (c *Client) Login(ctx context.Context, host, username, password string) (session.Auth, error) {
	env, err := c.do(ctx, host, request{
		method:    http.MethodPost,
		endpoint:  "token",
		body:      map[string]string{"username": username, "password": password},
		anonymous: true,
		fallback:  "Invalid credentials",
	})
	if err != nil {
		return session.Auth{}, err
	}
	return decodeAuth(env.Data)
}

func decodeAuth(data json.RawMessage) (session.Auth, error) {
	if !gjson.ParseBytes(data).IsObject() {
		return session.Auth{}, fmt.Errorf("auth response has no data object")
	}
	var auth session.Auth
	if err := json.Unmarshal(data, &auth); err != nil {
		return session.Auth{}, err
	}
	return auth, nil
}

// isEmpty reports whether a request body should be omitted.
func isEmpty(v any) bool {
	switch b := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(b) == 0
	case map[string]string:
		return len(b) == 0
	default:
		return false
	}
}
