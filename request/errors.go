// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"strings"

	"github.com/gogama/hydra/transient"
)

var (
	// ErrInvalidURL is wrapped by the error New returns when the URL is
	// empty, cannot be parsed, or lacks a scheme or host.
	ErrInvalidURL = errors.New("hydra/request: invalid URL")

	// ErrInvalidTransition is returned when a state transition is not
	// allowed from the request's current state.
	ErrInvalidTransition = errors.New("hydra/request: invalid state transition")

	// ErrResponseSet is returned when a response is assigned to a
	// request which already has a response for the current attempt.
	ErrResponseSet = errors.New("hydra/request: response already set")
)

// A TransportError reports a failure to complete an HTTP exchange:
// a connection failure, a DNS failure, a timeout, or an error reading
// the response body. It is distinct from an HTTP error status, which is
// delivered as a normal Response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return op(e.Method) + " " + `"` + e.URL + `": ` + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying cause is a timeout.
func (e *TransportError) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// op mirrors the operation naming used by net/http for url.Error.
func op(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
