package main

import (
	"context"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/valetkey/internal/buildinfo"
	"github.com/dmitrijs2005/valetkey/internal/client/cli"
	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/config"
	"github.com/dmitrijs2005/valetkey/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/valetkey/internal/client/session"
	"github.com/dmitrijs2005/valetkey/internal/client/share"
	"github.com/dmitrijs2005/valetkey/internal/flagx"
	"github.com/dmitrijs2005/valetkey/internal/logging"
	"github.com/dmitrijs2005/valetkey/internal/metrics"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error(ctx, "metrics listener stopped", "error", err)
			}
		}()
	}

	jar, store, closeDB, err := newJar(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeDB()

	api, err := client.New(client.Options{
		BaseURL:   cfg.ServerURL,
		Timeout:   cfg.RequestTimeout,
		Jar:       jar,
		Transport: m.InstrumentTransport(http.DefaultTransport),
		Logger:    logger.With("component", "api"),
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg, api, store, m, logger)

	if token, ok := publicRoute(flagx.Positional(os.Args[1:], config.ValuedFlags)); ok {
		if err := app.PublicOnce(ctx, token); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	app.Run(ctx)
}

// newJar returns the cookie jar holding the session. With a SessionDSN the
// cookies are persisted in SQLite so the session survives restarts.
func newJar(ctx context.Context, cfg *config.Config, logger logging.Logger) (http.CookieJar, session.CookieStore, func(), error) {
	if cfg.SessionDSN == "" {
		jar, err := cookiejar.New(nil)
		return jar, nil, func() {}, err
	}

	db, err := client.InitDatabase(ctx, cfg.SessionDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "failed to close session database", "error", err)
		}
	}

	jar, err := cookies.NewJar(ctx, cookies.NewSQLiteRepository(db), logger.With("component", "cookies"))
	if err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	return jar, jar, closeDB, nil
}

// publicRoute recognises "public <token|url>" as well as a bare
// /public/<token> path or share URL.
func publicRoute(args []string) (string, bool) {
	switch {
	case len(args) == 0:
		return "", false
	case args[0] == "public" && len(args) > 1:
		return args[1], true
	}
	if r := share.ParseRoute(args[0]); r.Kind == share.RoutePublic {
		return r.Token, true
	}
	return "", false
}
