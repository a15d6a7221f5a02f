package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Login authenticates and lets the server set the session cookie.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	req := loginRequest{Username: username, Password: password}
	if err := check(req); err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/login", body: req, out: &resp}); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return c.CurrentUser(ctx)
	}
	return resp.User, nil
}

// Logout asks the server to invalidate the session.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/logout"})
}

// CurrentUser returns the user bound to the session cookie.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user", out: &u}); err != nil {
		return nil, err
	}
	return &u, nil
}
