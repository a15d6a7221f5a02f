package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/config"
	"github.com/dmitrijs2005/valetkey/internal/client/dashboard"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/client/session"
	"github.com/dmitrijs2005/valetkey/internal/client/share"
	"github.com/dmitrijs2005/valetkey/internal/client/upload"
	"github.com/dmitrijs2005/valetkey/internal/logging"
)

// uploadCompletionDelay is how long a finished upload stays at 100%.
// Tests set it to a negative value.
var uploadCompletionDelay = upload.DefaultCompletionDelay

type App struct {
	cfg    *config.Config
	api    client.Client
	gate   *session.Gate
	dash   *dashboard.Controller
	upload *upload.Controller
	public *share.View
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the session gate, dashboard, upload flow and public view on
// top of api. cookies and rec may be nil.
func NewApp(cfg *config.Config, api client.Client, cookies session.CookieStore, rec upload.Recorder, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		cfg:    cfg,
		api:    api,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	a.gate = session.NewGate(api, cookies, log.With("component", "session"))
	a.dash = dashboard.New(api, dashboard.Options{
		PageSize:      cfg.PageSize,
		PublicBaseURL: cfg.PublicBase(),
		Confirm:       a.confirm,
		Logger:        log.With("component", "dashboard"),
	})
	a.upload = upload.New(api, upload.Options{
		OnComplete: func(ctx context.Context, _ *models.File) {
			_ = a.dash.Refresh(ctx)
		},
		OnProgress: func(s upload.State, percent int) {
			if s == upload.Idle || s == upload.FileChosen {
				return
			}
			fmt.Fprintf(a.out, "[%3d%%] %s\n", percent, s)
		},
		CompletionDelay: uploadCompletionDelay,
		Recorder:        rec,
		Logger:          log.With("component", "upload"),
	})
	a.public = share.NewView(api, log.With("component", "public"))
	return a
}

// Run resolves the stored session and starts the interactive loop: on the
// dashboard when the session is still valid, on the login prompt otherwise.
func (a *App) Run(ctx context.Context) {
	if u, ok := a.gate.Resolve(ctx); ok {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.Username)
		a.openDashboard(ctx)
	} else {
		fmt.Fprintln(a.out, "Not logged in. Sign in, or type 'help' at the prompt for commands.")
		if err := a.Login(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			report(err)
		}
	}
	runREPL(ctx, a, a.status, a.reader)
}

// PublicOnce serves a /public/<token> route without a session and exits.
func (a *App) PublicOnce(ctx context.Context, arg string) error {
	return a.Public(ctx, []string{arg})
}

func (a *App) openDashboard(ctx context.Context) {
	if err := a.dash.Navigate(ctx, ""); err != nil {
		report(err)
		return
	}
	a.renderFolder(a.dash.Snapshot())
}

func (a *App) isLoggedIn() bool {
	return a.gate.User() != nil
}

func (a *App) status() string {
	u := a.gate.User()
	if u == nil {
		return "(guest)"
	}
	return u.Username + ":" + a.dash.Snapshot().Path()
}

func (a *App) confirm(prompt string) bool {
	return Confirm(a.reader, prompt, a.out)
}
