// Package client talks to a logshare server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bimmerbailey/logshare/internal/api"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// ErrTooLarge is returned when the server rejects a body as too large.
var ErrTooLarge = errors.New("content too large")

// DefaultTimeout bounds each request when New gets a zero timeout.
const DefaultTimeout = 30 * time.Second

// Error is a non-2xx response. It unwraps to logs.ErrNotFound,
// logs.ErrInvalid or ErrTooLarge where the status maps to one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return logs.ErrNotFound
	case http.StatusBadRequest:
		return logs.ErrInvalid
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	}
	return nil
}

// Client calls one logshare server.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client for the server at endpoint (e.g.
// http://localhost:8080).
func New(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: must be an absolute http(s) URL", endpoint)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}, nil
}

// Endpoint returns the server base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upload shares content. expiresIn is a duration such as "24h"; empty uses
// the server default.
func (c *Client) Upload(ctx context.Context, content string, metadata map[string]any, expiresIn string) (api.CreateLogResponse, error) {
	var out api.CreateLogResponse
	err := c.do(ctx, http.MethodPost, "/api/logs/create", api.CreateLogRequest{
		Content:   content,
		Metadata:  metadata,
		ExpiresIn: expiresIn,
	}, &out)
	if err != nil {
		return api.CreateLogResponse{}, fmt.Errorf("upload: %w", err)
	}
	return out, nil
}

// Get fetches one log.
func (c *Client) Get(ctx context.Context, id string) (logs.Log, error) {
	var out logs.Log
	if err := c.do(ctx, http.MethodGet, "/api/logs/"+url.PathEscape(id), nil, &out); err != nil {
		return logs.Log{}, fmt.Errorf("get log: %w", err)
	}
	return out, nil
}

// List fetches one page of logs. Zero fields are left to server defaults.
func (c *Client) List(ctx context.Context, p logs.ListParams) (logs.ListResult, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Context != "" {
		q.Set("context", p.Context)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if !p.Since.IsZero() {
		q.Set("since", p.Since.UTC().Format(time.RFC3339))
	}

	path := "/api/logs/list"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out logs.ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return logs.ListResult{}, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

// Delete removes a log and its comments.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/logs/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}

// Comments fetches the comment tree of a log.
func (c *Client) Comments(ctx context.Context, logID string) ([]*logs.Comment, error) {
	var out api.CommentsResponse
	path := "/api/comments?" + url.Values{"logId": {logID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out.Comments, nil
}

// ContextStats fetches the number of logs per detected context.
func (c *Client) ContextStats(ctx context.Context) ([]logs.ContextCount, error) {
	var out api.ContextStatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/stats/contexts", nil, &out); err != nil {
		return nil, fmt.Errorf("context stats: %w", err)
	}
	return out.Contexts, nil
}

// Scan asks the server which kinds of sensitive data content contains.
func (c *Client) Scan(ctx context.Context, content string) (redact.Findings, error) {
	var out redact.Findings
	if err := c.do(ctx, http.MethodPost, "/api/scan", api.ScanRequest{Content: content}, &out); err != nil {
		return redact.Findings{}, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// do sends body as JSON and decodes a 2xx response into out. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body api.ErrorResponse
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		msg = body.Error
		if body.Message != "" {
			msg += ": " + body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
