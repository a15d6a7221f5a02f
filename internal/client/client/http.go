package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/valetkey/internal/logging"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Options configures an HTTPClient.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8080".
	BaseURL string
	// Timeout bounds each request. Zero means no client-side limit.
	Timeout time.Duration
	// Jar holds the session cookie. A nil jar disables sessions.
	Jar http.CookieJar
	// Transport is shared by the session and anonymous clients.
	Transport http.RoundTripper
	Logger    logging.Logger
}

// HTTPClient talks to the valetkey REST API. Session-bound calls go through
// a client with the cookie jar; public lookups and pre-signed transfers use
// a second client without one so no credentials leak to them.
type HTTPClient struct {
	base *url.URL
	api  *http.Client
	anon *http.Client
	log  logging.Logger
}

// New validates opts and builds an HTTPClient.
func New(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", opts.BaseURL)
	}

	tr := opts.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &HTTPClient{
		base: base,
		api:  &http.Client{Transport: tr, Jar: opts.Jar, Timeout: opts.Timeout},
		anon: &http.Client{Transport: tr, Timeout: opts.Timeout},
		log:  log,
	}, nil
}

// BaseURL returns the API root the client was built with.
func (c *HTTPClient) BaseURL() string { return c.base.String() }

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	anon   bool
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one API round trip. 2xx bodies are decoded into r.out; any
// other outcome becomes an *APIError.
func (c *HTTPClient) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(b)
	}

	reqID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, reqID)
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.api
	if r.anon {
		hc = c.anon
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug(ctx, "api request failed", "method", r.method, "path", r.path, "error", err)
		return &APIError{Kind: ErrNetwork, Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(r, resp)
	}

	if r.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &APIError{Kind: ErrServer, Status: resp.StatusCode, Method: r.method, Path: r.path,
			Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(r request, resp *http.Response) error {
	ae := &APIError{
		Kind:   kindForStatus(resp.StatusCode),
		Status: resp.StatusCode,
		Method: r.method,
		Path:   r.path,
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var mb messageBody
	if json.Unmarshal(raw, &mb) == nil {
		ae.Message = mb.Message
		if ae.Message == "" {
			ae.Message = mb.Error
		}
	}
	return ae
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))
	return q
}
