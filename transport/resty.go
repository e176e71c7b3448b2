// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gogama/hydra/request"
)

// Resty is a Handle which sends requests through a resty client.
//
// Resty's own retry machinery is left switched off; retries belong to
// the dispatcher's retry policy.
type Resty struct {
	client *resty.Client
}

// NewResty returns a Resty transport handle using c. If c is nil, a new
// resty client is created.
func NewResty(c *resty.Client) *Resty {
	if c == nil {
		c = resty.New()
	}
	c.SetRetryCount(0)
	return &Resty{client: c}
}

// Client returns the underlying resty client.
func (t *Resty) Client() *resty.Client {
	return t.client
}

// Perform sends r through the resty client.
func (t *Resty) Perform(ctx context.Context, r *request.Request, timeout time.Duration) (*Result, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req := t.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(r.Header)
	if len(r.Body) > 0 {
		req.SetBody(r.Body)
	}

	start := time.Now()
	resp, err := req.Execute(r.Method, r.URL.String())
	if err != nil {
		return nil, Error(r, err)
	}

	return &Result{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Elapsed:    time.Since(start),
	}, nil
}

// CloseIdleConnections closes idle connections held by the resty
// client's underlying http.Client.
func (t *Resty) CloseIdleConnections() {
	t.client.GetClient().CloseIdleConnections()
}
