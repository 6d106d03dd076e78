package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/coachboard/coachboard-client/internal/models"
)

// Login posts the OAuth2 password form. identifier may be a username or email.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.Token, error) {
	form := url.Values{"username": {identifier}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	data, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var tok models.Token
	if err := decode(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser is never cached; it doubles as the token validity check.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, ErrMalformedProfile
	}
	return &user, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var tok models.Token
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// GoogleLoginURL is where a browser starts the OAuth flow
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/auth/google/login"
}
