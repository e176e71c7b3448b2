// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gogama/hydra/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// HTTP is a Handle which sends requests through an HTTPDoer, typically
// an http.Client. Its zero value uses http.DefaultClient.
//
// HTTP reads and buffers the entire response body. The request body is
// always sent as the request entity, with ContentLength and GetBody
// set so the HTTPDoer can replay it on redirect.
type HTTP struct {
	// Doer specifies the mechanics of sending HTTP requests and
	// receiving responses. If nil, http.DefaultClient is used.
	Doer HTTPDoer
}

// NewHTTP returns an HTTP transport handle using d.
func NewHTTP(d HTTPDoer) *HTTP {
	return &HTTP{Doer: d}
}

// Perform sends r through the HTTPDoer.
func (t *HTTP) Perform(ctx context.Context, r *request.Request, timeout time.Duration) (*Result, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := t.doer().Do(toHTTPRequest(ctx, r))
	if err != nil {
		return nil, Error(r, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Error(r, err)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Elapsed:    time.Since(start),
	}, nil
}

// CloseIdleConnections invokes the same method on the underlying
// HTTPDoer, if it has one.
func (t *HTTP) CloseIdleConnections() {
	if ic, ok := t.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (t *HTTP) doer() HTTPDoer {
	if t.Doer == nil {
		return http.DefaultClient
	}
	return t.Doer
}

func toHTTPRequest(ctx context.Context, r *request.Request) *http.Request {
	req := (&http.Request{
		Method:     r.Method,
		URL:        r.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     r.Header.Clone(),
		Host:       r.URL.Host,
	}).WithContext(ctx)
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if len(r.Body) > 0 {
		body := r.Body
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		req.ContentLength = int64(len(body))
	}
	return req
}
