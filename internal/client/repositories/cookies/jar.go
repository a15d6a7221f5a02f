package cookies

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/valetkey/internal/logging"
)

const persistTimeout = 5 * time.Second

type cookieKey struct {
	domain string
	name   string
	path   string
}

// Jar is an http.CookieJar that keeps net/http/cookiejar semantics in memory
// and writes every change through to a Repository. A nil repository makes it
// a plain in-memory jar.
type Jar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	byHost map[string]map[cookieKey]Record
	repo   Repository
	log    logging.Logger
	now    func() time.Time
}

// NewJar builds a Jar and seeds it from repo.
func NewJar(ctx context.Context, repo Repository, log logging.Logger) (*Jar, error) {
	if log == nil {
		log = logging.Nop()
	}
	j := &Jar{repo: repo, log: log, now: time.Now}
	j.reset()

	if repo == nil {
		return j, nil
	}

	recs, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := j.now()
	for _, rec := range recs {
		if rec.Expired(now) {
			continue
		}
		j.remember(rec)
		j.inner.SetCookies(recordURL(rec), []*http.Cookie{rec.cookie()})
	}
	return j, nil
}

func (j *Jar) reset() {
	inner, _ := cookiejar.New(nil)
	j.inner = inner
	j.byHost = make(map[string]map[cookieKey]Record)
}

// recordURL is the URL a stored cookie is replayed against. Domain cookies
// use their domain as host so the jar keeps them domain-wide.
func recordURL(rec Record) *url.URL {
	scheme := "http"
	if rec.Secure {
		scheme = "https"
	}
	host := rec.Host
	if rec.Domain != "" {
		host = rec.Domain
	}
	return &url.URL{Scheme: scheme, Host: host, Path: rec.Path}
}

func cookieDomain(c *http.Cookie) string {
	return strings.ToLower(strings.TrimPrefix(c.Domain, "."))
}

func (j *Jar) remember(rec Record) {
	m, ok := j.byHost[rec.Host]
	if !ok {
		m = make(map[cookieKey]Record)
		j.byHost[rec.Host] = m
	}
	m[cookieKey{domain: rec.Domain, name: rec.Name, path: rec.Path}] = rec
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.inner.SetCookies(u, cookies)

	host := u.Hostname()
	now := j.now()
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		domain := cookieDomain(c)
		key := cookieKey{domain: domain, name: c.Name, path: path}

		rec := Record{
			Host:     host,
			Domain:   domain,
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge > 0:
			rec.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			rec.Expires = c.Expires
		}

		if c.MaxAge < 0 || rec.Expired(now) {
			if m := j.byHost[host]; m != nil {
				delete(m, key)
			}
			continue
		}
		j.remember(rec)
	}

	snapshot := make([]Record, 0, len(j.byHost[host]))
	for _, rec := range j.byHost[host] {
		snapshot = append(snapshot, rec)
	}
	j.mu.Unlock()

	if j.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := j.repo.Replace(ctx, host, snapshot); err != nil {
		j.log.Warn(ctx, "session cookies not persisted", "host", host, "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear forgets every cookie, in memory and in the repository.
func (j *Jar) Clear(ctx context.Context) error {
	j.mu.Lock()
	j.reset()
	j.mu.Unlock()

	if j.repo == nil {
		return nil
	}
	return j.repo.Clear(ctx)
}
