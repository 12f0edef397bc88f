// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Do executes an HTTP request with ctx attached. The caller owns the
// response body on success.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	return client.Do(req.Clone(ctx))
}

// DrainClose discards any remaining response body and closes it, so the
// underlying connection can be reused. Safe to call on error paths.
func DrainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// RetryAfter returns the response's Retry-After header as a duration, or
// zero when the header is absent or unparseable. Only the delta-seconds
// form is recognized.
func RetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
