// SPDX-License-Identifier: MIT

// Package client is the typed HTTP client for the producers REST API.
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

	xglog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/platform/httpx"
)

// maxErrorBody bounds how much of a failed response is kept in an Error.
const maxErrorBody = 64 << 10

// Error is returned for any non-2xx response.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return "Error encountered: " + e.Body
}

// Client talks JSON to the backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Wait serves requests the backend holds open until a send run ends.
	// Nil falls back to HTTP.
	Wait *http.Client
}

// New returns a client for baseURL. A nil httpClient gets the hardened,
// trace-propagating default from httpx.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpx.NewClient(30 * time.Second)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
	}
}

// do sends a JSON request. GET requests carry no body; other methods send
// body or an empty JSON object. The response is decoded into out when set.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWith(ctx, c.HTTP, method, path, body, out)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if method != http.MethodGet {
		if body == nil {
			body = struct{}{}
		}
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := xglog.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{StatusCode: resp.StatusCode, Body: string(text)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func producerPath(id string, suffix string) string {
	return "/producers/" + url.PathEscape(id) + suffix
}
