package drpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oriormedia/drp-admin/internal/domain"
)

// AuthClient calls the api/auth endpoints that must go out with bare headers:
// login, refresh and the pre-login password flows carry no bearer token or
// tenant header because the caller has no session yet. It deliberately does
// not use the augmenter transport.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthClient creates a bare auth client for the given API base URL.
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// LoginRequest is the body for POST api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body for POST api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest is the body for POST api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST api/auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// tokenData is the data section of login/refresh envelopes.
type tokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges credentials for tokens. A rejected login, an HTTP error
// status, or a 2xx envelope without succeeded=true and a non-empty access
// token all yield *domain.LoginError carrying the server message.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	tokens, message, err := c.exchange(ctx, "login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, &domain.LoginError{Message: message}
	}
	return tokens, nil
}

// Refresh exchanges a refresh token for a new token pair. Unlike Login, a
// rejection is a plain error: the caller clears the session either way.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	tokens, message, err := c.exchange(ctx, "refresh", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		if message == "" {
			message = "no access token in refresh response"
		}
		return nil, fmt.Errorf("refresh rejected: %s", message)
	}
	return tokens, nil
}

// Logout notifies the server that the session ends. Callers treat failures
// as non-fatal.
func (c *AuthClient) Logout(ctx context.Context) error {
	envelope, message, err := c.post(ctx, "logout", struct{}{})
	if err != nil {
		return err
	}
	if envelope == nil {
		return fmt.Errorf("logout rejected: %s", message)
	}
	return nil
}

// ForgotPassword starts the password reset flow.
func (c *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	return c.simple(ctx, "forgot-password", ForgotPasswordRequest{Email: email})
}

// ResetPassword completes the password reset flow with the emailed token.
func (c *AuthClient) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	return c.simple(ctx, "reset-password", ResetPasswordRequest{
		Email:       email,
		Token:       token,
		NewPassword: newPassword,
	})
}

// exchange runs a token-issuing call (login or refresh) and validates the
// envelope. It returns (nil, message, nil) when the server answered but did
// not issue a usable token.
func (c *AuthClient) exchange(ctx context.Context, suffix string, body any) (*domain.AuthTokens, string, error) {
	envelope, raw, err := c.post(ctx, suffix, body)
	if err != nil {
		return nil, "", err
	}
	if envelope == nil {
		return nil, raw, nil
	}

	var data tokenData
	if envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, "", fmt.Errorf("failed to parse token data: %w", err)
		}
	}
	if !envelope.Succeeded || data.AccessToken == "" {
		return nil, envelope.Message, nil
	}
	return &domain.AuthTokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}, "", nil
}

// simple runs a call where only succeeded/message matter.
func (c *AuthClient) simple(ctx context.Context, suffix string, body any) error {
	envelope, message, err := c.post(ctx, suffix, body)
	if err != nil {
		return err
	}
	if envelope == nil {
		return fmt.Errorf("request failed: %s", message)
	}
	if !envelope.Succeeded {
		return fmt.Errorf("request failed: %s", envelope.Message)
	}
	return nil
}

// post sends a bare JSON request to api/auth/<suffix>. On an error status it
// returns (nil, extracted message, nil) so callers can decide how to surface
// it; only transport-level failures are returned as errors.
func (c *AuthClient) post(ctx context.Context, suffix string, body any) (*Envelope, string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/auth/" + suffix
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errorMessage(respBody, resp.Status), nil
	}

	var envelope Envelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}
	return &envelope, "", nil
}
