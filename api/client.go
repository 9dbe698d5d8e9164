package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-admin-client/authapi"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/outcome"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client calls content endpoints through the authenticated transport chain.
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

func NewClient(baseURL string, httpClient *http.Client, options ...ClientOption) (*Client, error) {
	u, err := authapi.ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		return nil, fmt.Errorf("[api NewClient] http client is required")
	}

	c := &Client{baseURL: u, http: httpClient, log: log.Logger}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do sends body as JSON (when non-nil) to path, relative to the API base URL, and decodes the
// response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := c.resolve(path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return authapi.TransportError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := authapi.StatusErrorFrom(resp)
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, statusErr)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s %s: decode response: %w", method, path, apperrors.Join(apperrors.ErrNetwork, err))
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", &apperrors.ValidationError{Field: "path", Reason: err.Error()}
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", &apperrors.ValidationError{Field: "path", Reason: "must be relative to the API base URL"}
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Get fetches path and decodes it as T.
func Get[T any](ctx context.Context, c *Client, path string) outcome.Result[T] {
	return Send[T](ctx, c, http.MethodGet, path, nil)
}

// Send issues method on path with body and decodes the response as T.
func Send[T any](ctx context.Context, c *Client, method, path string, body any) outcome.Result[T] {
	var out T
	if err := c.Do(ctx, method, path, body, &out); err != nil {
		return outcome.FromError[T](err)
	}
	return outcome.Success(out)
}
