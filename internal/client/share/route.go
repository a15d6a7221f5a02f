package share

import (
	"net/url"
	"strings"
)

type RouteKind int

const (
	// RouteMain is the catch-all: dashboard when logged in, login otherwise.
	RouteMain RouteKind = iota
	RoutePublic
)

type Route struct {
	Kind  RouteKind
	Token string
}

const publicPrefix = "/public/"

// ParseRoute maps a path, a full URL or a bare token argument to a route.
// Only /public/<token> is a public route; everything else is RouteMain.
func ParseRoute(s string) Route {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	if !strings.HasPrefix(s, publicPrefix) {
		return Route{Kind: RouteMain}
	}
	token := strings.Trim(strings.TrimPrefix(s, publicPrefix), "/")
	if token == "" || strings.Contains(token, "/") {
		return Route{Kind: RouteMain}
	}
	if t, err := url.PathUnescape(token); err == nil {
		token = t
	}
	return Route{Kind: RoutePublic, Token: token}
}

// TokenArg accepts what a user types after "public": a bare token, a
// /public/<token> path or a full share URL.
func TokenArg(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", false
	}
	if r := ParseRoute(arg); r.Kind == RoutePublic {
		return r.Token, true
	}
	if strings.ContainsAny(arg, "/?#") {
		return "", false
	}
	return arg, true
}
