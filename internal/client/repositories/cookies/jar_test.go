package cookies

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	recs     map[string][]Record
	loadErr  error
	saveErr  error
	cleared  bool
	replaces int
}

func newMemRepo() *memRepo { return &memRepo{recs: map[string][]Record{}} }

func (m *memRepo) Load(context.Context) ([]Record, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	var out []Record
	for _, rs := range m.recs {
		out = append(out, rs...)
	}
	return out, nil
}

func (m *memRepo) Replace(_ context.Context, host string, recs []Record) error {
	m.replaces++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recs[host] = append([]Record(nil), recs...)
	return nil
}

func (m *memRepo) Clear(context.Context) error {
	m.cleared = true
	m.recs = map[string][]Record{}
	return nil
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func cookieValue(cs []*http.Cookie, name string) string {
	for _, c := range cs {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestJar_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := mustURL(t, "http://api.local:8080/login")

	j, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "s1", Path: "/", HttpOnly: true}})

	require.Len(t, repo.recs["api.local"], 1)
	assert.Equal(t, "s1", repo.recs["api.local"][0].Value)

	reloaded, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	got := reloaded.Cookies(mustURL(t, "http://api.local:8080/api/files/list"))
	assert.Equal(t, "s1", cookieValue(got, "JSESSIONID"))
}

func TestJar_DomainCookieSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	j, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	j.SetCookies(mustURL(t, "https://api.example.com/login"), []*http.Cookie{
		{Name: "SESSION", Value: "wide", Path: "/", Domain: ".Example.com", Secure: true},
	})
	require.Len(t, repo.recs["api.example.com"], 1)
	assert.Equal(t, "example.com", repo.recs["api.example.com"][0].Domain)

	reloaded, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	for _, raw := range []string{"https://api.example.com/api/user", "https://files.example.com/x"} {
		got := reloaded.Cookies(mustURL(t, raw))
		assert.Equal(t, "wide", cookieValue(got, "SESSION"), raw)
	}
	assert.Empty(t, reloaded.Cookies(mustURL(t, "https://example.org/")))
}

func TestJar_HostOnlyCookieStaysHostOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	j, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	j.SetCookies(mustURL(t, "http://api.example.com/"), []*http.Cookie{{Name: "sid", Value: "h", Path: "/"}})

	reloaded, err := NewJar(ctx, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, "h", cookieValue(reloaded.Cookies(mustURL(t, "http://api.example.com/")), "sid"))
	assert.Empty(t, reloaded.Cookies(mustURL(t, "http://files.example.com/")))
}

func TestJar_SkipsExpiredOnLoad(t *testing.T) {
	repo := newMemRepo()
	repo.recs["api.local"] = []Record{
		{Host: "api.local", Name: "old", Value: "x", Path: "/", Expires: time.Now().Add(-time.Hour)},
		{Host: "api.local", Name: "live", Value: "y", Path: "/", Expires: time.Now().Add(time.Hour)},
	}

	j, err := NewJar(context.Background(), repo, nil)
	require.NoError(t, err)
	got := j.Cookies(mustURL(t, "http://api.local/"))
	assert.Empty(t, cookieValue(got, "old"))
	assert.Equal(t, "y", cookieValue(got, "live"))
}

func TestJar_DeletionByMaxAge(t *testing.T) {
	repo := newMemRepo()
	u := mustURL(t, "http://api.local/")

	j, err := NewJar(context.Background(), repo, nil)
	require.NoError(t, err)
	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "s1", Path: "/"}})
	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "", Path: "/", MaxAge: -1}})

	assert.Empty(t, repo.recs["api.local"])
	assert.Empty(t, j.Cookies(u))
}

func TestJar_Clear(t *testing.T) {
	repo := newMemRepo()
	u := mustURL(t, "http://api.local/")

	j, err := NewJar(context.Background(), repo, nil)
	require.NoError(t, err)
	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "s1", Path: "/"}})

	require.NoError(t, j.Clear(context.Background()))
	assert.True(t, repo.cleared)
	assert.Empty(t, j.Cookies(u))
}

func TestJar_InMemoryWithoutRepository(t *testing.T) {
	u := mustURL(t, "http://api.local/")
	j, err := NewJar(context.Background(), nil, nil)
	require.NoError(t, err)

	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "s1", Path: "/"}})
	assert.Equal(t, "s1", cookieValue(j.Cookies(u), "JSESSIONID"))
	require.NoError(t, j.Clear(context.Background()))
	assert.Empty(t, j.Cookies(u))
}

func TestJar_LoadErrorAndSaveError(t *testing.T) {
	repo := newMemRepo()
	repo.loadErr = errors.New("disk gone")
	_, err := NewJar(context.Background(), repo, nil)
	require.Error(t, err)

	repo.loadErr = nil
	repo.saveErr = errors.New("read-only")
	j, err := NewJar(context.Background(), repo, nil)
	require.NoError(t, err)

	u := mustURL(t, "http://api.local/")
	j.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "s1", Path: "/"}})
	assert.Equal(t, 1, repo.replaces)
	assert.Equal(t, "s1", cookieValue(j.Cookies(u), "JSESSIONID"), "memory copy survives a failed write")
}
