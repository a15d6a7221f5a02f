// Package cookies persists the API session cookies between CLI runs.
package cookies

import (
	"context"
	"net/http"
	"time"
)

// Record is one stored cookie. A zero Expires marks a session cookie and an
// empty Domain a host-only one. Host is the server that set it.
type Record struct {
	Host     string
	Domain   string
	Name     string
	Value    string
	Path     string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
}

// Expired reports whether r is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return !r.Expires.IsZero() && !r.Expires.After(now)
}

func (r Record) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     r.Name,
		Value:    r.Value,
		Path:     r.Path,
		Domain:   r.Domain,
		Expires:  r.Expires,
		Secure:   r.Secure,
		HttpOnly: r.HTTPOnly,
	}
}

// Repository stores cookie records.
type Repository interface {
	Load(ctx context.Context) ([]Record, error)
	// Replace swaps every record of host for recs.
	Replace(ctx context.Context, host string, recs []Record) error
	Clear(ctx context.Context) error
}
