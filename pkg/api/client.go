// Package api implements the client for the community API, the service that
// stores members, rules, suggestions and moderation metadata for the guild.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ResponseCodeError is returned when the community API answers with a
// non-OK status. Exactly one of ResponseJSON and ResponseText is set,
// depending on whether the error body parsed as JSON.
type ResponseCodeError struct {
	Status       int
	ResponseJSON map[string]interface{}
	ResponseText string
}

func (e *ResponseCodeError) Error() string {
	if len(e.ResponseJSON) > 0 {
		return fmt.Sprintf("Status: %d Response: %v", e.Status, e.ResponseJSON)
	}
	return fmt.Sprintf("Status: %d Response: %s", e.Status, e.ResponseText)
}

// Client talks to the community API. All endpoint methods live in
// tortoise.go; this file only carries the transport.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. Requests authenticate
// with the "Token" scheme the API expects.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) urlFor(endpoint string) string {
	return c.baseURL + strings.TrimPrefix(endpoint, "/")
}

// do performs one request against the API. body is marshaled as JSON when
// non-nil, out is filled from the response body when non-nil. A 204 answer
// carries no body and leaves out untouched.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.urlFor(endpoint), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, endpoint, err)
	}

	if resp.StatusCode >= 400 {
		rcErr := &ResponseCodeError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, &rcErr.ResponseJSON); jsonErr != nil {
			rcErr.ResponseJSON = nil
			rcErr.ResponseText = string(raw)
		}
		return rcErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, nil)
}

func (c *Client) put(ctx context.Context, endpoint string, body interface{}) error {
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

func (c *Client) patch(ctx context.Context, endpoint string, body interface{}) error {
	return c.do(ctx, http.MethodPatch, endpoint, body, nil)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
