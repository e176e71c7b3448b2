// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogama/hydra/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := newRequest(t)
	assert.Equal(t, time.Duration(0), DefaultPolicy.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, time.Duration(0), DefaultPolicy.Timeout(r))
}

func TestInfinite(t *testing.T) {
	r := newRequest(t)
	assert.Equal(t, time.Duration(0), Infinite.Timeout(r))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	r := newRequest(t)
	assert.Equal(t, 33*time.Hour, p.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, 33*time.Hour, p.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, 33*time.Hour, p.Timeout(r))
}

func TestAdaptive(t *testing.T) {
	p := Adaptive(5*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond)
	r := newRequest(t)
	assert.Equal(t, 5*time.Millisecond, p.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, 10*time.Millisecond, p.Timeout(r))
	failAttempt(t, r, errors.New("just a routine problem"))
	assert.Equal(t, 5*time.Millisecond, p.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, 100*time.Millisecond, p.Timeout(r))
	failAttempt(t, r, timeoutErr)
	assert.Equal(t, 3, r.AttemptTimeouts())
	assert.Equal(t, 100*time.Millisecond, p.Timeout(r))
}

func TestFor(t *testing.T) {
	t.Run("request timeout wins", func(t *testing.T) {
		r, err := request.New("http://localhost:3000", request.Timeout(10*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, For(Fixed(time.Hour), r))
		assert.Equal(t, 10*time.Millisecond, For(nil, r))
	})
	t.Run("policy otherwise", func(t *testing.T) {
		r := newRequest(t)
		assert.Equal(t, time.Hour, For(Fixed(time.Hour), r))
		assert.Equal(t, time.Duration(0), For(nil, r))
	})
}

var timeoutErr = &request.TransportError{Method: "GET", URL: "http://localhost:3000", Err: context.DeadlineExceeded}

func newRequest(t *testing.T) *request.Request {
	r, err := request.New("http://localhost:3000")
	require.NoError(t, err)
	return r
}

func failAttempt(t *testing.T, r *request.Request, err error) {
	if r.State() == request.Retrying {
		require.NoError(t, r.Requeue())
	}
	require.NoError(t, r.Begin())
	require.NoError(t, r.Retry(request.NewErrorResponse(err, 0)))
}
