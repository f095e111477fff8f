package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

// AuthClient implements ports.AuthClient over the /auth endpoints.
type AuthClient struct {
	*Client
}

var _ ports.AuthClient = (*AuthClient)(nil)

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{Client: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userData struct {
	User *domain.User `json:"user"`
}

// Login posts the credentials. Anything short of success with both a token
// and a user is a failed login.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.status == http.StatusBadRequest,
		resp.status == http.StatusUnauthorized,
		resp.status == http.StatusForbidden,
		resp.status == http.StatusNotFound:
		return nil, domain.ErrInvalidCredentials
	case resp.status != http.StatusOK:
		return nil, unexpected(resp)
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := decodeUser(env.Data)
	if err != nil {
		return nil, err
	}
	if env.Token == "" || user == nil {
		return nil, fmt.Errorf("%w: login response without token or user", domain.ErrNetwork)
	}
	return &ports.AuthResult{AccessToken: env.Token, RefreshToken: env.RefreshToken, User: user}, nil
}

// Refresh exchanges the refresh token for a new access token. A rejected
// refresh token is domain.ErrSessionExpired.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.status == http.StatusBadRequest,
		resp.status == http.StatusUnauthorized,
		resp.status == http.StatusForbidden:
		return nil, domain.ErrSessionExpired
	case resp.status != http.StatusOK:
		return nil, unexpected(resp)
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Token == "" {
		return nil, domain.ErrSessionExpired
	}
	user, err := decodeUser(env.Data)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{AccessToken: env.Token, RefreshToken: env.RefreshToken, User: user}, nil
}

// Me returns the user the access token belongs to.
func (c *AuthClient) Me(ctx context.Context, accessToken string) (*domain.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrSessionExpired
	default:
		return nil, unexpected(resp)
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, domain.ErrSessionExpired
	}
	user, err := decodeUser(env.Data)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: me response without user", domain.ErrNetwork)
	}
	return user, nil
}

// Logout asks the server to invalidate the access token.
func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil)
	if err != nil {
		return err
	}
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}
	return unexpected(resp)
}

func decodeUser(data json.RawMessage) (*domain.User, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var d userData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", domain.ErrNetwork, err)
	}
	return d.User, nil
}
