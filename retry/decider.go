// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/hydra/request"
	"github.com/gogama/hydra/transient"
)

// A Decider decides if a failed attempt should be retried.
//
// The dispatcher consults a Decider only after a failed attempt, that
// is an attempt which ended in a transport error or received a status
// code outside the 2xx and 3xx ranges. Parameter resp is the response
// of the failed attempt, and attempt is the request's attempt count
// before the retry, so zero after the initial attempt, one after the
// first retry, and so on.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in deciders MaxRetries, TransportErr and TransientErr,
// and the constructors Times, StatusCode and Before; or implement your
// own Decider. Use DeciderFunc to convert an ordinary function into a
// Decider, and to compose deciders logically using DeciderFunc.And and
// DeciderFunc.Or.
type Decider interface {
	Decide(r *request.Request, resp *request.Response, attempt int) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(r *request.Request, resp *request.Response, attempt int) bool

// DefaultDecider retries transport errors (connection refused, timeout,
// reset, DNS failure and so on) while the attempt count is below the
// request's MaxRetries. It never retries a completed HTTP exchange,
// whatever its status code: compose StatusCode into a custom decider to
// retry on status.
var DefaultDecider = MaxRetries.And(TransportErr)

// MaxRetries is a decider that allows retries while the attempt count
// is less than the request's MaxRetries field.
var MaxRetries DeciderFunc = maxRetries

// TransportErr is a decider that indicates a retry if the failed
// attempt ended in any transport error.
var TransportErr DeciderFunc = transportErr

// TransientErr is a decider that indicates a retry if the failed
// attempt ended in a transport error which is transient according to
// transient.Categorize.
//
// TransientErr only looks at the error, so it will always return false
// if a valid HTTP response was received. Compose it with other
// deciders, for example a status code decider constructed with
// StatusCode, to get more complex functionality.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise.
func (f DeciderFunc) Decide(r *request.Request, resp *request.Response, attempt int) bool {
	return f(r, resp, attempt)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(r *request.Request, resp *request.Response, attempt int) bool {
		return f(r, resp, attempt) && g(r, resp, attempt)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(r *request.Request, resp *request.Response, attempt int) bool {
		return f(r, resp, attempt) || g(r, resp, attempt)
	}
}

// Times constructs a retry decider which allows up to n retries
// regardless of the request's MaxRetries.
func Times(n int) DeciderFunc {
	return func(_ *request.Request, _ *request.Response, attempt int) bool {
		return attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the request was first dispatched.
func Before(d time.Duration) DeciderFunc {
	return func(r *request.Request, _ *request.Response, _ int) bool {
		return time.Since(r.Start()) < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code. If the failed attempt received a valid
// HTTP response, and the response status code is contained in the list
// ss, the decider returns true. Otherwise, it returns false.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(_ *request.Request, resp *request.Response, _ int) bool {
		if resp == nil || resp.Err() != nil {
			return false
		}
		for _, s := range ss2 {
			if resp.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func maxRetries(r *request.Request, _ *request.Response, attempt int) bool {
	return attempt < r.MaxRetries
}

func transportErr(_ *request.Request, resp *request.Response, _ int) bool {
	return resp != nil && resp.Err() != nil
}

func transientErr(_ *request.Request, resp *request.Response, _ int) bool {
	return resp != nil && transient.Categorize(resp.Err()) != transient.Not
}
