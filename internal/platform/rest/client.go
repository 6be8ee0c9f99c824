// Package rest implements platform.Client over the platform's JSON HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// APIPrefix is appended to the configured base URL.
const APIPrefix = "/api/v1"

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Minute

// Config configures a Client.
type Config struct {
	// BaseURL is the platform URL, without the API prefix.
	BaseURL  string
	Username string
	Password string

	// Caller identifies the tool in the X-Caller header.
	Caller string

	// Timeout bounds every request.
	Timeout time.Duration

	// HTTPClient overrides the default client. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks to the platform API. It logs in lazily on the first request
// and reuses the token for the lifetime of the client.
type Client struct {
	base     string
	username string
	password string
	caller   string
	http     *http.Client

	mu    sync.Mutex
	token string
}

var _ platform.Client = (*Client)(nil)

// New creates a Client. BaseURL and Username are required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, oerrors.NewValidationError("platform URL is not set", "", "platform.url",
			"Set it with --url, DVCTL_PLATFORM_URL, VS_URL or in the config file.")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, oerrors.NewValidationError(fmt.Sprintf("invalid platform URL %q", cfg.BaseURL), "", "platform.url", "")
	}
	if cfg.Username == "" {
		return nil, oerrors.NewValidationError("platform user is not set", "", "platform.username",
			"Set it with --user, DVCTL_PLATFORM_USERNAME, VS_USER or in the config file.")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	caller := cfg.Caller
	if caller == "" {
		caller = "dvctl"
	}

	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/") + APIPrefix,
		username: cfg.Username,
		password: cfg.Password,
		caller:   caller,
		http:     httpClient,
	}, nil
}

// apiError is the error body returned by the platform.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// statusError is a non-2xx response.
type statusError struct {
	Method string
	Path   string
	Status int
	Body   apiError
}

func (e *statusError) Error() string {
	msg := e.Body.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// request describes one API call.
type request struct {
	method string
	path   string
	body   any

	// out receives the decoded JSON response. When raw is set the body is
	// copied there instead.
	out any
	raw io.Writer

	anonymous bool
}

func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	var resp struct {
		Token string `json:"token"`
	}
	err := c.send(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      map[string]string{"username": c.username, "password": c.password},
		out:       &resp,
		anonymous: true,
	}, "")
	if err != nil {
		return "", fmt.Errorf("logging in as %s: %w", c.username, err)
	}
	if resp.Token == "" {
		return "", oerrors.NewPermissionError("login returned no token", map[string]string{"User": c.username}, "")
	}
	c.token = resp.Token
	return c.token, nil
}

func (c *Client) do(ctx context.Context, req request) error {
	token, err := c.login(ctx)
	if err != nil {
		return err
	}
	return c.send(ctx, req, token)
}

func (c *Client) send(ctx context.Context, req request, token string) error {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base+req.path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Caller", c.caller)
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return c.transportError(req, err)
	}
	defer resp.Body.Close()
	output.Debug("platform request", "method", req.method, "path", req.path,
		"status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 300 {
		serr := &statusError{Method: req.method, Path: req.path, Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &serr.Body) != nil {
			serr.Body.Message = strings.TrimSpace(string(data))
		}
		return mapStatus(serr)
	}

	switch {
	case req.raw != nil:
		if _, err := io.Copy(req.raw, resp.Body); err != nil {
			return c.transportError(req, err)
		}
	case req.out != nil:
		if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
			return fmt.Errorf("decoding %s %s: %w", req.method, req.path, err)
		}
	}
	return nil
}

func (c *Client) transportError(req request, err error) error {
	var netErr net.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return oerrors.NewConnectivityError(
			fmt.Sprintf("%s %s: %v", req.method, req.path, err),
			map[string]string{"URL": c.base},
			"Check the platform URL and your network connection.")
	}
	return fmt.Errorf("%s %s: %w", req.method, req.path, err)
}

func mapStatus(e *statusError) error {
	ctx := map[string]string{"Request": e.Method + " " + e.Path}
	switch {
	case e.Status == http.StatusNotFound:
		return oerrors.NewNotFoundError(e.Error(), ctx, "")
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return oerrors.NewPermissionError(e.Error(), ctx, "Check the configured platform user and password.")
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return &oerrors.DetailError{Type: "validation failed", Message: e.Error(), Context: ctx, Cause: oerrors.ErrValidation}
	default:
		return e
	}
}
