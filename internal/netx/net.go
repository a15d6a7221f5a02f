// Package netx moves file bytes to and from object storage through
// pre-signed URLs. Requests carry no API credentials: the URL itself is the
// authorisation.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4 << 10

// StatusError reports a non-2xx answer from a pre-signed URL.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s; body: %s", e.Op, e.Status, e.Body)
}

func clientOrDefault(hc *http.Client) *http.Client {
	if hc == nil {
		return http.DefaultClient
	}
	return hc
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
}

func ok(code int) bool { return code >= 200 && code < 300 }

// Put uploads size bytes from body to a pre-signed PUT URL with the given
// content type. An empty content type is sent as application/octet-stream.
func Put(ctx context.Context, hc *http.Client, url string, body io.Reader, size int64, contentType string) error {
	if size == 0 || body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := clientOrDefault(hc).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return statusError("upload", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Get downloads a pre-signed GET URL into w and returns the byte count.
func Get(ctx context.Context, hc *http.Client, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := clientOrDefault(hc).Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return 0, statusError("download", resp)
	}
	return io.Copy(w, resp.Body)
}
