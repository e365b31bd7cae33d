package api

import (
	"context"
	"net/url"
	"time"

	"tradepanel/auth"
)

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // seconds
	User        auth.User `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Login exchanges credentials for a bearer token. The body is form-encoded
// to match the backend's OAuth2 login route; this endpoint is the one call
// that legitimately runs without a token attached.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var loginResp LoginResponse
	if err := c.doForm(ctx, "/api/auth/login", form, &loginResp); err != nil {
		return nil, err
	}

	return &loginResp, nil
}

// CredentialFromLogin turns a login response into the durable credential,
// stamping the expiry in epoch milliseconds relative to now.
func CredentialFromLogin(resp *LoginResponse, now time.Time) auth.Credential {
	return auth.Credential{
		Token:     resp.AccessToken,
		ExpiresAt: now.Add(time.Duration(resp.ExpiresIn) * time.Second).UnixMilli(),
		User:      resp.User,
	}
}

// Register creates a new panel account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*auth.User, error) {
	var user auth.User
	if err := c.post(ctx, "/api/auth/register", req, &user); err != nil {
		return nil, err
	}

	return &user, nil
}
