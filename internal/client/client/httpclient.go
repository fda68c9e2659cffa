package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
)

const (
	registerPath = "/auth/register"
	loginPath    = "/auth/login"
	mePath       = "/auth/me"

	maxBodySize = 1 << 20
)

// HTTPClient talks to the JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  logging.Logger
}

// NewHTTPClient returns a client for the server at baseURL. A nil token
// source sends no Authorization header.
func NewHTTPClient(baseURL string, timeout time.Duration, token TokenSource, l logging.Logger) *HTTPClient {
	if token == nil {
		token = noToken
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		logger:  l.With("module", "http-client"),
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) envelope.Result[api.AuthResponse] {
	req := api.RegisterRequest{Username: username, Password: password}
	return call[api.AuthResponse](ctx, c, http.MethodPost, registerPath, req)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) envelope.Result[api.AuthResponse] {
	req := api.LoginRequest{Username: username, Password: password}
	return call[api.AuthResponse](ctx, c, http.MethodPost, loginPath, req)
}

func (c *HTTPClient) Me(ctx context.Context) envelope.Result[api.UserDetail] {
	return call[api.UserDetail](ctx, c, http.MethodGet, mePath, nil)
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any) envelope.Result[T] {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		c.logger.Error(ctx, "build request", "path", path, "error", err)
		return envelope.Fail[T](envelope.ServerError, "Failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "path", path, "error", err)
		return envelope.Fail[T](envelope.ServerError, msgUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Warn(ctx, "read response", "path", path, "error", err)
		return envelope.Fail[T](envelope.ServerError, msgUnavailable)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			c.logger.Warn(ctx, "decode response", "path", path, "status", resp.StatusCode, "error", err)
			return envelope.Fail[T](envelope.ServerError, msgBadResponse)
		}
		return envelope.OK(out)
	}

	c.logger.Warn(ctx, "request rejected", "path", path, "status", resp.StatusCode)
	return failure[T](decodeErrorBody(resp.StatusCode, raw))
}

// decodeErrorBody prefers the structured document and falls back to the
// status line and the raw body text.
func decodeErrorBody(status int, raw []byte) api.ErrorResponse {
	var doc api.ErrorResponse
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Error != "" && doc.Code.Known() && doc.Code != envelope.None {
		return doc
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "API call failed."
	}
	return api.ErrorResponse{Error: msg, Code: envelope.CodeForStatus(status)}
}
