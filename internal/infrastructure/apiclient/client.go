// Package apiclient talks to the marketplace REST API: the auth endpoints
// and the store resource. Every failure leaving this package belongs to the
// domain error taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/marketplace/admin-console/internal/core/domain"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	maxBodyBytes        = 1 << 20
)

// Config captures the settings of the API client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Client is a thin JSON client over the marketplace API.
type Client struct {
	client  *http.Client
	baseURL string
}

// New builds a Client. Requests are retried only on transport errors; any
// HTTP response is final.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}

	return &Client{
		client:  retryClient.StandardClient(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// envelope is the response wrapper used by the marketplace API.
type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

type response struct {
	status int
	body   []byte
}

// do sends a JSON request. A non-nil error is always domain.ErrNetwork.
func (c *Client) do(ctx context.Context, method, path, bearer string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}
	return &response{status: resp.StatusCode, body: raw}, nil
}

func decodeEnvelope(r *response) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
	}
	return &env, nil
}

func unexpected(r *response) error {
	return fmt.Errorf("%w: unexpected code %d: %s", domain.ErrNetwork, r.status, truncate(r.body))
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
