package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxErrorBody bounds how much of an error response is read for its message
const maxErrorBody = 64 << 10

// Client calls the backend's auth endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     zerolog.Logger
}

type ClientOption func(*Client)

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = logger
	}
}

// NewClient resolves endpoint paths against baseURL. httpClient carries the
// transport chain and timeouts; it is never http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, options ...ClientOption) (*Client, error) {
	u, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		return nil, fmt.Errorf("[authapi NewClient] http client is required")
	}

	c := &Client{baseURL: u, http: httpClient, log: log.Logger}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// ParseBaseURL parses an API root and makes sure relative paths resolve beneath it
func ParseBaseURL(baseURL string) (*url.URL, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}
	if len(u.Path) == 0 || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return u, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, PathRefresh, RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the backend to invalidate the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, PathLogout, RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := StatusErrorFrom(resp)
		c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("auth endpoint rejected request")
		return fmt.Errorf("%s: %w", path, statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s: decode response: %w", path, apperrors.Join(apperrors.ErrNetwork, err))
	}
	return nil
}

// TransportError classifies an error from http.Client.Do. A security veto keeps its
// identity; anything else is a network failure.
func TransportError(path string, err error) error {
	if apperrors.Is(err, apperrors.ErrSecurityViolation) || apperrors.Is(err, apperrors.ErrSessionInvalid) {
		return err
	}
	return fmt.Errorf("%s: %w", path, apperrors.Join(apperrors.ErrNetwork, err))
}

// StatusErrorFrom builds a StatusError from a non-success response, using the
// backend's message when the body carries one.
func StatusErrorFrom(resp *http.Response) *apperrors.StatusError {
	statusErr := &apperrors.StatusError{Code: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var msg MessageResponse
	if json.Unmarshal(data, &msg) == nil {
		statusErr.Message = msg.Message
		if statusErr.Message == "" {
			statusErr.Message = msg.Error
		}
	}
	if statusErr.Message == "" {
		statusErr.Message = http.StatusText(resp.StatusCode)
	}
	return statusErr
}

func (r *TokenResponse) validate() error {
	if r.AccessToken == "" || r.RefreshToken == "" {
		return fmt.Errorf("token response: %w", apperrors.ErrPartialSession)
	}
	return nil
}
