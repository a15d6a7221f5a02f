package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
)

func publicPath(token, suffix string) string {
	return "/api/public/files/" + url.PathEscape(token) + suffix
}

// PublicFile resolves a share token to file metadata. It never sends the
// session cookie.
func (c *HTTPClient) PublicFile(ctx context.Context, token string) (*models.PublicFile, error) {
	token, err := requireText("public token", token)
	if err != nil {
		return nil, err
	}
	var out models.PublicFile
	if err := c.do(ctx, request{method: http.MethodGet, path: publicPath(token, ""), out: &out, anon: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublicDownloadURL returns a pre-signed GET URL for a shared file.
func (c *HTTPClient) PublicDownloadURL(ctx context.Context, token string) (*models.DownloadLink, error) {
	token, err := requireText("public token", token)
	if err != nil {
		return nil, err
	}
	var out models.DownloadLink
	if err := c.do(ctx, request{method: http.MethodGet, path: publicPath(token, "/download"), out: &out, anon: true}); err != nil {
		return nil, err
	}
	return &out, nil
}
