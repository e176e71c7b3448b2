// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/gogama/hydra/transient"
)

// A Response holds the outcome of one finished attempt of a Request:
// either a completed HTTP exchange (whatever its status code) or a
// transport-level error.
//
// A Response is immutable once constructed.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte
	elapsed    time.Duration
	err        error
	cached     bool
}

// NewResponse returns a Response for a completed HTTP exchange.
func NewResponse(statusCode int, header http.Header, body []byte, elapsed time.Duration) *Response {
	return &Response{
		statusCode: statusCode,
		header:     header,
		body:       body,
		elapsed:    elapsed,
	}
}

// NewErrorResponse returns a Response for an attempt which ended in a
// transport error. The status code of the result is zero.
func NewErrorResponse(err error, elapsed time.Duration) *Response {
	return &Response{
		err:     err,
		elapsed: elapsed,
	}
}

// AsCached returns a copy of the response flagged as served from cache.
// The copy shares no header map or body slice with r.
func (r *Response) AsCached() *Response {
	c := r.Clone()
	c.cached = true
	return c
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	c := *r
	c.header = r.header.Clone()
	if r.body != nil {
		c.body = append([]byte(nil), r.body...)
	}
	return &c
}

// StatusCode returns the HTTP status code, or zero if the attempt ended
// in a transport error.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Header returns the response headers. The result may be nil, which is
// safe for read-only use.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the complete response body.
func (r *Response) Body() []byte {
	return r.body
}

// Elapsed returns the time the attempt took.
func (r *Response) Elapsed() time.Duration {
	return r.elapsed
}

// Err returns the transport error, or nil for a completed HTTP
// exchange.
func (r *Response) Err() error {
	return r.err
}

// Cached reports whether the response was served from a cache.
func (r *Response) Cached() bool {
	return r.cached
}

// OK reports whether the exchange completed without a transport error
// and with a 2xx or 3xx status.
func (r *Response) OK() bool {
	return r.err == nil && r.statusCode >= 200 && r.statusCode < 400
}

// Timeout reports whether the response carries a transport error caused
// by a timeout.
func (r *Response) Timeout() bool {
	return transient.Categorize(r.err) == transient.Timeout
}
