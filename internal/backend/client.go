package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/homedash/internal/version"
)

const (
	// DefaultBaseURL is where the controller backend listens by default
	DefaultBaseURL = "http://127.0.0.1:5001"

	// DefaultTimeout bounds every request, including status polls
	DefaultTimeout = 3 * time.Second

	// maxStatusBytes caps how much of a /status body is read
	maxStatusBytes = 1 << 20
)

// Client talks to the controller backend's HTTP/JSON API.
//
// Client never retries: a failed poll is superseded by the next tick and a
// failed command is reported to the operator instead.
type Client struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:5001"
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string
}

// NewClient creates a client for the backend at baseURL. A zero timeout
// selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  version.UserAgent(),
	}
}

// FetchStatus performs GET /status and returns the raw JSON body. The
// caller owns decoding so that snapshot construction stays in one place.
func (c *Client) FetchStatus(ctx context.Context) ([]byte, error) {
	op := "GET " + PathStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PathStatus, nil)
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Op: op, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, NewHTTPError(op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBytes))
	if err != nil {
		return nil, classifyTransportError(op, err)
	}

	return body, nil
}

// Send POSTs cmd.Body as JSON to cmd.Path. Any 2xx status is success; the
// response body is drained and ignored.
func (c *Client) Send(ctx context.Context, cmd Command) error {
	op := "POST " + cmd.Path

	body := cmd.Body
	if body == nil {
		body = EmptyBody{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Type: ErrTypeParse, Op: op, Message: "failed to encode request body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+cmd.Path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Type: ErrTypeNetwork, Op: op, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if cmd.RequestID != "" {
		req.Header.Set("X-Request-ID", cmd.RequestID)
	}
	c.setCommonHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return classifyTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewHTTPError(op, resp.StatusCode)
	}

	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}

// String identifies the backend in log lines and the dashboard header
func (c *Client) String() string {
	return fmt.Sprintf("backend %s", c.BaseURL)
}
