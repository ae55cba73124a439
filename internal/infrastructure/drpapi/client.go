package drpapi

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
)

// Headers the DRP backend expects on every call.
const (
	HeaderOrganizationID = "X-Organization-Id"
	HeaderRequestID      = "X-Request-Id"
)

const defaultTimeout = 30 * time.Second

// Envelope is the response wrapper the DRP API returns on auth endpoints and
// most mutations. A 2xx status with Succeeded=false is still a failure.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Succeeded  bool            `json:"succeeded"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

// errorBody is the shape of DRP error responses. JSON field matching is
// case-insensitive, so both "Message" and "message" land here.
type errorBody struct {
	Message string   `json:"message"`
	Err     string   `json:"error"`
	Errors  []string `json:"errors"`
}

// errorMessage extracts a display message from an error body, falling back
// when the body is empty or not JSON.
func errorMessage(body []byte, fallback string) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return fallback
	}

	msg := e.Message
	if msg == "" {
		msg = e.Err
	}

	var parts []string
	if msg != "" {
		parts = append(parts, msg)
	}
	if len(e.Errors) > 0 {
		parts = append(parts, strings.Join(e.Errors, " "))
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " - ")
}

// Client calls the authenticated DRP API surface. Every request goes through
// the augmenter transport, so it carries the bearer token and tenant header
// the backend relies on; callers never attach those themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an authenticated API client. transport is normally the
// augmenter Transport, optionally wrapped with otelhttp instrumentation.
func NewClient(baseURL string, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do executes a request and decodes the response body into out (out may be
// nil for calls whose response body does not matter).
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("drp api error: %s", errorMessage(respBody, resp.Status))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ChangePasswordRequest is the body for the authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword updates the password of the logged-in user. Unlike the other
// password flows this one requires the bearer token, so it lives on the
// authenticated client.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	var envelope Envelope
	err := c.do(ctx, http.MethodPost, "api/auth/change-password", nil, ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, &envelope)
	if err != nil {
		return err
	}
	if !envelope.Succeeded {
		return fmt.Errorf("change password failed: %s", envelope.Message)
	}
	return nil
}
