// Package session decides whether the CLI starts on the dashboard or on the
// login prompt, and owns the current user for the lifetime of the process.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/logging"
)

// CookieStore is the local side of the session: the jar holding the cookie.
type CookieStore interface {
	Clear(ctx context.Context) error
}

type Gate struct {
	api     client.AuthAPI
	cookies CookieStore
	log     logging.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewGate builds a gate. cookies may be nil when sessions are not persisted.
func NewGate(api client.AuthAPI, cookies CookieStore, log logging.Logger) *Gate {
	if log == nil {
		log = logging.Nop()
	}
	return &Gate{api: api, cookies: cookies, log: log}
}

// Resolve asks the backend who owns the current session. Any failure,
// including an unreachable server, counts as unauthenticated.
func (g *Gate) Resolve(ctx context.Context) (*models.User, bool) {
	u, err := g.api.CurrentUser(ctx)
	if err != nil {
		g.log.Debug(ctx, "session not resolved", "error", err)
		g.setUser(nil)
		return nil, false
	}
	g.setUser(u)
	return u, true
}

func (g *Gate) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := g.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	g.setUser(u)
	g.log.Info(ctx, "logged in", "username", u.Username)
	return u, nil
}

// Logout never fails: the backend call is best effort, and the local user
// and cookie store are cleared regardless.
func (g *Gate) Logout(ctx context.Context) {
	if err := g.api.Logout(ctx); err != nil {
		g.log.Warn(ctx, "backend logout failed", "error", err)
	}
	g.setUser(nil)
	if g.cookies == nil {
		return
	}
	if err := g.cookies.Clear(ctx); err != nil {
		g.log.Warn(ctx, "failed to clear session cookies", "error", err)
	}
}

// User returns the authenticated user or nil.
func (g *Gate) User() *models.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

func (g *Gate) setUser(u *models.User) {
	g.mu.Lock()
	g.user = u
	g.mu.Unlock()
}
