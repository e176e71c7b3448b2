// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"context"
	"net/http"

	"github.com/gogama/hydra/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do runs a single Request to completion and returns its final
// response (and error, if any). Hydra implements the Doer interface,
// and any other Doer implementation must behave substantially the same
// as Hydra.Do.
type Doer interface {
	Do(ctx context.Context, r *request.Request) (*request.Response, error)
}

// Queuer is the interface that wraps the basic Enqueue and Run methods.
//
// Enqueue adds a Request to a batch and Run processes the batch in
// parallel. Hydra implements the Queuer interface.
type Queuer interface {
	Enqueue(ctx context.Context, r *request.Request) error
	Run(ctx context.Context) error
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Do, Enqueue, Run and
// CloseIdleConnections methods.
type Executor interface {
	Doer
	Queuer
	IdleCloser
}

// Get uses the specified Doer to issue a GET to the specified URL.
//
// To add query parameters, headers or other settings, pass the
// corresponding request options.
func Get(ctx context.Context, d Doer, url string, opts ...request.Option) (*request.Response, error) {
	return do(ctx, d, http.MethodGet, url, opts)
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
func Head(ctx context.Context, d Doer, url string, opts ...request.Option) (*request.Response, error) {
	return do(ctx, d, http.MethodHead, url, opts)
}

// Post uses the specified Doer to issue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.Body, namely: string; []byte; io.Reader;
// and io.ReadCloser. The body is always sent as the request entity.
func Post(ctx context.Context, d Doer, url string, body interface{}, opts ...request.Option) (*request.Response, error) {
	return do(ctx, d, http.MethodPost, url, append(opts[:len(opts):len(opts)], request.Body(body)))
}

// Put uses the specified Doer to issue a PUT to the specified URL. The
// body parameter follows the same rules as for Post.
func Put(ctx context.Context, d Doer, url string, body interface{}, opts ...request.Option) (*request.Response, error) {
	return do(ctx, d, http.MethodPut, url, append(opts[:len(opts):len(opts)], request.Body(body)))
}

// Delete uses the specified Doer to issue a DELETE to the specified
// URL.
func Delete(ctx context.Context, d Doer, url string, opts ...request.Option) (*request.Response, error) {
	return do(ctx, d, http.MethodDelete, url, opts)
}

func do(ctx context.Context, d Doer, method, url string, opts []request.Option) (*request.Response, error) {
	r, err := request.New(url, append(opts[:len(opts):len(opts)], request.Method(method))...)
	if err != nil {
		return nil, err
	}
	return d.Do(ctx, r)
}
