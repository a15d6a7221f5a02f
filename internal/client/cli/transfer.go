package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/valetkey/internal/filex"
)

// save downloads url into the configured download directory under a name
// that does not clobber an existing file. A failed transfer leaves nothing
// behind.
func (a *App) save(ctx context.Context, url, name string) error {
	dir, err := filex.EnsureDir(a.cfg.DownloadDir)
	if err != nil {
		return err
	}
	f, err := filex.CreateUnique(dir, name)
	if err != nil {
		return err
	}

	n, err := a.api.Download(ctx, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(f.Name()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			a.log.Warn(ctx, "failed to remove partial download", "path", f.Name(), "error", rerr)
		}
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%s)\n", f.Name(), formatSize(n))
	return nil
}
