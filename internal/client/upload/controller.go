// Package upload drives the three-step direct upload: ask the backend for a
// pre-signed URL, PUT the bytes to object storage, then confirm the record.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/logging"
)

const DefaultCompletionDelay = 500 * time.Millisecond

var (
	ErrBusy   = errors.New("an upload is already in progress")
	ErrNoFile = errors.New("no file chosen")
)

// Recorder receives upload outcomes, e.g. for metrics.
type Recorder interface {
	UploadSucceeded(bytes int64)
	UploadFailed(step string)
}

type Options struct {
	// OnComplete runs after a confirmed upload, before the reset to Idle.
	OnComplete func(ctx context.Context, f *models.File)
	// OnProgress observes every state change.
	OnProgress func(s State, percent int)
	// CompletionDelay is how long Done stays visible. Negative means none.
	CompletionDelay time.Duration
	Recorder        Recorder
	Logger          logging.Logger
}

// Controller owns one upload at a time.
type Controller struct {
	api  client.UploadAPI
	opts Options
	log  logging.Logger

	mu        sync.Mutex
	state     State
	progress  int
	file      *LocalFile
	uploading bool
}

func New(api client.UploadAPI, opts Options) *Controller {
	if opts.CompletionDelay == 0 {
		opts.CompletionDelay = DefaultCompletionDelay
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{api: api, opts: opts, log: log}
}

// Choose selects the file for the next upload.
func (c *Controller) Choose(f LocalFile) error {
	if f.Name == "" || f.Open == nil {
		return fmt.Errorf("choose file: %w", ErrNoFile)
	}
	if f.Size < 0 {
		return fmt.Errorf("choose file: negative size %d", f.Size)
	}
	if f.ContentType == "" {
		f.ContentType = contentTypeFor(f.Name)
	}

	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.file = &f
	c.mu.Unlock()

	c.transition(FileChosen, 0)
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// Chosen returns the selected file, if any.
func (c *Controller) Chosen() (LocalFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return LocalFile{}, false
	}
	return *c.file, true
}

// Upload sends the chosen file into folderID (root when zero). The steps
// run strictly in order and a failed step stops the flow.
func (c *Controller) Upload(ctx context.Context, folderID models.ID) (*models.File, error) {
	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.file == nil || c.state != FileChosen {
		c.mu.Unlock()
		return nil, ErrNoFile
	}
	f := *c.file
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	c.transition(RequestingURL, 0)
	target, err := c.api.GenerateUploadURL(ctx, f.Name, f.Size, folderID)
	if err != nil {
		return nil, c.fail(ctx, "request upload url", err)
	}

	c.transition(Transferring, progressURL)
	if err := c.transfer(ctx, f, target.UploadURL); err != nil {
		return nil, c.fail(ctx, "transfer", err)
	}

	c.transition(Confirming, progressTransfer)
	stored, err := c.api.ConfirmUpload(ctx, target.FileID, f.ContentType)
	if err != nil {
		return nil, c.fail(ctx, "confirm upload", err)
	}

	c.transition(Done, progressConfirmed)
	c.log.Info(ctx, "upload complete", "file", f.Name, "id", stored.ID, "size", f.Size)
	if c.opts.Recorder != nil {
		c.opts.Recorder.UploadSucceeded(f.Size)
	}
	if c.opts.OnComplete != nil {
		c.opts.OnComplete(ctx, stored)
	}

	if c.opts.CompletionDelay > 0 {
		t := time.NewTimer(c.opts.CompletionDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	c.reset()
	return stored, nil
}

func (c *Controller) transfer(ctx context.Context, f LocalFile, url string) error {
	body, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()
	return c.api.Transfer(ctx, url, body, f.Size, f.ContentType)
}

func (c *Controller) fail(ctx context.Context, step string, err error) error {
	c.log.Error(ctx, "upload failed", "step", step, "error", err)
	if c.opts.Recorder != nil {
		c.opts.Recorder.UploadFailed(step)
	}
	c.transition(Failed, c.Progress())
	c.reset()
	return fmt.Errorf("%s: %w", step, err)
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.file = nil
	c.mu.Unlock()
	c.transition(Idle, 0)
}

func (c *Controller) transition(s State, percent int) {
	c.mu.Lock()
	c.state = s
	c.progress = percent
	c.mu.Unlock()
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(s, percent)
	}
}
