// Package share is the anonymous view of a publicly shared file.
package share

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/logging"
)

const NotFoundMessage = "File not found or link has been revoked"

// Result is what the public view shows. When Found is false, Message is
// the only thing to display.
type Result struct {
	Found   bool
	File    *models.PublicFile
	Message string
}

type View struct {
	api client.PublicAPI
	log logging.Logger
}

func NewView(api client.PublicAPI, log logging.Logger) *View {
	if log == nil {
		log = logging.Nop()
	}
	return &View{api: api, log: log}
}

// Open resolves token. Every failure collapses into the same not-found
// result so an invalid token and a revoked link look alike.
func (v *View) Open(ctx context.Context, token string) Result {
	f, err := v.api.PublicFile(ctx, token)
	if err != nil {
		v.log.Warn(ctx, "public link lookup failed", "error", err)
		return Result{Message: NotFoundMessage}
	}
	return Result{Found: true, File: f}
}

// DownloadURL fetches a fresh pre-signed URL. It is only called when the
// user asks to download.
func (v *View) DownloadURL(ctx context.Context, token string) (string, error) {
	link, err := v.api.PublicDownloadURL(ctx, token)
	if err != nil {
		return "", fmt.Errorf("public download: %w", err)
	}
	return link.DownloadURL, nil
}
