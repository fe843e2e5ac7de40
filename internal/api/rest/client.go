// Package rest implements the api ports over the backend's REST/JSON
// interface with bearer-token auth.
package rest

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

	"babysteps/internal/api"
)

// Client is the typed HTTP gateway. One instance serves all sessions; the
// bearer token travels per request in the context.
type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure interface conformance.
var (
	_ api.AuthGateway      = (*Client)(nil)
	_ api.UserGateway      = (*Client)(nil)
	_ api.ExpenseGateway   = (*Client)(nil)
	_ api.CategoryGateway  = (*Client)(nil)
	_ api.ResponseGateway  = (*Client)(nil)
	_ api.ChildrenGateway  = (*Client)(nil)
	_ api.MilestoneGateway = (*Client)(nil)
)

// New creates a client for the backend at baseURL (scheme and host, no
// trailing slash required). Timeout bounds every call end to end.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing backend base URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("backend base URL: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// do performs one backend call. body and out may be nil. Non-2xx responses
// decode into *api.Error with the backend's own message preserved.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := api.TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(ctx, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError extracts the backend's message. Django-style bodies carry
// either {"detail": "..."} or a field->messages map.
func decodeError(ctx context.Context, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		raw = nil
	}

	msg := messageFromBody(raw)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	slog.DebugContext(ctx, "Backend call rejected",
		"status", resp.StatusCode,
		"message", msg)

	return &api.Error{StatusCode: resp.StatusCode, Message: msg}
}

func messageFromBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		switch {
		case detail.Detail != "":
			return detail.Detail
		case detail.Message != "":
			return detail.Message
		case detail.Error != "":
			return detail.Error
		}
	}

	// Field validation map: pick the first field's first message.
	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		for field, msgs := range fields {
			if len(msgs) > 0 {
				return field + ": " + msgs[0]
			}
		}
	}
	return ""
}
