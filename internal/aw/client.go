// Package aw is the client for the hosted Appwrite backend. It covers the
// three capability groups the app consumes: account sessions, document
// storage and blob storage, plus the realtime subscription channel.
//
// The rest of the codebase talks to these services through small interfaces,
// so tests substitute fakes and never touch the network.
package aw

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

	"go.uber.org/zap"
)

// Client carries the endpoint coordinates and session token shared by the
// account, database and storage services.
type Client struct {
	endpoint string
	project  string
	session  string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a client for the given endpoint (e.g.
// https://cloud.appwrite.io/v1) and project ID.
func NewClient(endpoint, project string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		project:  project,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// SetSession attaches a session secret to all subsequent requests.
func (c *Client) SetSession(secret string) {
	c.session = secret
}

// Endpoint returns the configured REST endpoint without a trailing slash.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Project returns the configured project ID.
func (c *Client) Project() string {
	return c.project
}

// call performs one JSON request against the service. Non-2xx responses are
// returned as *Error so callers can distinguish not-found, conflict and
// unauthenticated conditions.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(encoded)
	}

	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

// upload performs one multipart request, used for blob creation.
func (c *Client) upload(ctx context.Context, path string, form io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, form)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-Appwrite-Project", c.project)
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	}
}

func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		svcErr := &Error{Code: resp.StatusCode}
		if err := json.Unmarshal(raw, svcErr); err != nil || svcErr.Message == "" {
			svcErr.Message = http.StatusText(resp.StatusCode)
		}
		return svcErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
