// Package client talks to a running `sezi serve`. A Client satisfies the
// reading engine's progress and stats collaborators, so a terminal or
// desktop reader can keep its position in a shared library.
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

	"github.com/ali6parmak/sezi/internal/document"
)

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Error is a non-2xx response from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server: %d: %s", e.Status, e.Message)
}

// NotFound reports whether err is a 404 from the server.
func NotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 512<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &env)
		msg := env.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &Error{Status: resp.StatusCode, Code: env.Error.Code, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Document fetches a library document with its saved position.
func (c *Client) Document(ctx context.Context, id string) (*document.Document, *document.Progress, error) {
	var resp struct {
		Document *document.Document `json:"document"`
		Progress *document.Progress `json:"progress"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, nil, err
	}
	if resp.Document == nil {
		return nil, nil, fmt.Errorf("document %s: empty response", id)
	}
	if resp.Document.ID == "" {
		resp.Document.ID = id
	}
	return resp.Document, resp.Progress, nil
}

// Settings fetches the user preferences.
func (c *Client) Settings(ctx context.Context) (document.Settings, error) {
	var resp struct {
		Settings document.Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &resp); err != nil {
		return document.Settings{}, err
	}
	return resp.Settings, nil
}

// SaveProgress implements reader.ProgressSaver.
func (c *Client) SaveProgress(ctx context.Context, p document.Progress) error {
	return c.do(ctx, http.MethodPost, "/api/progress", p, nil)
}

// RecordStats implements reader.StatsRecorder.
func (c *Client) RecordStats(ctx context.Context, s document.SessionStats) error {
	return c.do(ctx, http.MethodPost, "/api/stats", s, nil)
}
