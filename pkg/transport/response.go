package transport

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// Response wraps an *http.Response so the body can be read as text more than
// once. The underlying body is drained and closed on the first read; every
// later read returns the buffered text.
type Response struct {
	raw *http.Response

	bodyOnce sync.Once
	body     string
	bodyErr  error
}

// BodyResult is the outcome of an asynchronous body read.
type BodyResult struct {
	Body string
	Err  error
}

func NewResponse(raw *http.Response) *Response {
	return &Response{raw: raw}
}

// Raw returns the underlying *http.Response. The body may already be
// drained; use BodyAsString instead of reading it directly.
func (r *Response) Raw() *http.Response {
	return r.raw
}

func (r *Response) StatusCode() int {
	if r == nil || r.raw == nil {
		return 0
	}
	return r.raw.StatusCode
}

// HeaderValue returns the first value of the named header, or "" when the
// header is absent.
func (r *Response) HeaderValue(name string) string {
	if r == nil || r.raw == nil {
		return ""
	}
	return r.raw.Header.Get(name)
}

// BodyAsString reads the response body as text. Safe to call repeatedly.
func (r *Response) BodyAsString(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.bodyOnce.Do(func() {
		if r.raw == nil || r.raw.Body == nil {
			return
		}
		defer r.raw.Body.Close()
		b, err := io.ReadAll(r.raw.Body)
		if err != nil {
			r.bodyErr = &TransportError{Op: "read body", URL: requestURL(r.raw), Err: err}
			return
		}
		r.body = string(b)
	})
	return r.body, r.bodyErr
}

// BodyAsStringAsync reads the body off the calling goroutine and delivers
// exactly one BodyResult.
func (r *Response) BodyAsStringAsync(ctx context.Context) <-chan BodyResult {
	out := make(chan BodyResult, 1)
	go func() {
		defer close(out)
		body, err := r.BodyAsString(ctx)
		out <- BodyResult{Body: body, Err: err}
	}()
	return out
}

func requestURL(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}
