// Package taskclient is an HTTP client for the task API. It maps responses
// back onto the task package's error values so callers behave the same over
// HTTP as they do in-process.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/josephgoksu/taskmate/internal/task"
)

const (
	defaultTimeout = 15 * time.Second
	chatTimeout    = 2 * time.Minute
)

// Client talks to a taskmate server.
type Client struct {
	baseURL string
	http    *http.Client
	chat    *http.Client // agent turns outlive the CRUD timeout
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP clients.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.chat = hc
	}
}

// New returns a Client rooted at baseURL (e.g. "http://localhost:3000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		chat:    &http.Client{Timeout: chatTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListTasks(ctx context.Context, status task.Status) ([]task.Task, error) {
	path := "/tasks"
	if status != task.StatusAll {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []task.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPost, "/tasks", in, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id), p, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &out)
	return out, err
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

type errorBody struct {
	Error string `json:"error"`
}

// APIError is a non-2xx response that has no task-level meaning.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("task API returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWith(ctx, c.http, method, path, in, out)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return statusError(resp.StatusCode, data)
}

// notFoundMessage is the body the task API sends for an unknown id. Any
// other 404 means the base URL is wrong and surfaces as an APIError.
const notFoundMessage = "Task not found"

func statusError(code int, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := strings.TrimSpace(eb.Error)

	switch {
	case code == http.StatusNotFound && msg == notFoundMessage:
		return task.ErrNotFound
	case code == http.StatusBadRequest:
		if msg == "" {
			msg = "Invalid request"
		}
		return &task.ValidationError{Message: msg}
	default:
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: code, Message: msg}
	}
}

// IsAPIError reports whether err came from a non-2xx, non-task response.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
