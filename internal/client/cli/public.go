package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/valetkey/internal/client/share"
)

const publicUsage = "public <token|url> [-d]"

// Public shows a shared file without touching the session. With -d, or
// when the user agrees, the file is downloaded through a fresh link.
func (a *App) Public(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usageError{publicUsage}
	}
	token, ok := share.TokenArg(args[0])
	if !ok {
		return usageError{publicUsage}
	}
	download := false
	if len(args) == 2 {
		if args[1] != "-d" {
			return usageError{publicUsage}
		}
		download = true
	}

	res := a.public.Open(ctx, token)
	if !res.Found {
		fmt.Fprintln(a.out, res.Message)
		return nil
	}
	a.renderPublicFile(res.File)

	if !download && !a.confirm("Download "+res.File.FileName+"?") {
		return nil
	}
	url, err := a.public.DownloadURL(ctx, token)
	if err != nil {
		return err
	}
	return a.save(ctx, url, res.File.FileName)
}
