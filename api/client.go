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
	"net/url"
	"strings"
	"time"

	"tradepanel/auth"
	"tradepanel/httpmiddleware"
)

// ErrUnauthorized is returned when the backend rejects the credential with a
// 401 or 403. By the time a caller sees it the gateway has already cleared
// the token store and fired the OnUnauthorized callback, so local error
// handling is mostly moot; the session teardown supersedes it.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a structured backend error (4xx with a detail message).
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Client talks to the panel backend. It injects the bearer token from the
// token store on every request and intercepts 401/403 globally: the
// credential keys are cleared (all three, atomically) and the injected
// OnUnauthorized callback fires, regardless of which caller issued the
// failing request. Two instances exist at runtime, one for the API root and
// one for the /api news mount, with identical interception semantics.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string

	tokens         *auth.TokenStore
	logger         *slog.Logger
	onUnauthorized func()
}

func NewClient(baseURL string, tokens *auth.TokenStore, logger *slog.Logger, timeout time.Duration) *Client {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: httpmiddleware.Wrap(
			httpmiddleware.DefaultTransport(),
			httpmiddleware.Throttle(10, 20),
			httpmiddleware.Logger(logger),
		),
	}

	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     logger,
	}
}

// SetOnUnauthorized installs the callback invoked after a 401/403 has
// cleared the credential. The session controller uses it to force the app
// back to the login surface.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// post issues an authenticated POST with an optional JSON body.
func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

// put issues an authenticated PUT with a JSON body.
func (c *Client) put(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// doForm issues a POST with a form-encoded body. The login endpoint is an
// OAuth2 form on the backend, everything else is JSON.
func (c *Client) doForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.forceLogout(req, resp.StatusCode)
		return ErrUnauthorized
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(respBody),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// forceLogout is the centralized credential-expiry handler: clear the three
// credential keys and notify the session controller. This fires for any
// 401/403, no matter which container's request tripped it.
func (c *Client) forceLogout(req *http.Request, status int) {
	c.logger.Warn("credential rejected, forcing logout",
		slog.Int("status", status),
		slog.String("url", req.URL.String()))

	if err := c.tokens.Clear(); err != nil {
		c.logger.Error("failed to clear credential", slog.Any("error", err))
	}

	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// extractDetail pulls the backend's structured error message out of a 4xx
// body, falling back to the raw body when it is not the usual shape.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}
