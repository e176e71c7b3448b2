// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gogama/hydra/request"
)

// A Handle performs one HTTP exchange for a request.
//
// Perform sends r and returns the fully-buffered response. A positive
// timeout bounds the whole exchange, including reading the body; zero
// means no deadline beyond any carried by ctx. A completed exchange is
// never an error whatever its status code. Any failure to complete the
// exchange is reported as a *request.TransportError.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, and must not modify r.
type Handle interface {
	Perform(ctx context.Context, r *request.Request, timeout time.Duration) (*Result, error)
}

// The HandleFunc type is an adapter to allow the use of ordinary
// functions as transport handles.
type HandleFunc func(ctx context.Context, r *request.Request, timeout time.Duration) (*Result, error)

// Perform calls f(ctx, r, timeout).
func (f HandleFunc) Perform(ctx context.Context, r *request.Request, timeout time.Duration) (*Result, error) {
	return f(ctx, r, timeout)
}

// A Result is the outcome of a completed HTTP exchange.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// Response converts the result into a request.Response.
func (res *Result) Response() *request.Response {
	return request.NewResponse(res.StatusCode, res.Header, res.Body, res.Elapsed)
}

// An IdleCloser has a CloseIdleConnections method, as the standard
// library http.Client and resty's client both do.
type IdleCloser interface {
	CloseIdleConnections()
}

// Error wraps err as a *request.TransportError for r. If err already is
// one, it is returned unchanged. A *url.Error is unwrapped first, since
// the TransportError carries the same method and URL.
func Error(r *request.Request, err error) error {
	var te *request.TransportError
	if errors.As(err, &te) {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &request.TransportError{
		Method: r.Method,
		URL:    r.URL.String(),
		Err:    err,
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
