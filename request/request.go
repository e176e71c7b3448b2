// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"
)

// A Request describes one logical HTTP call together with its
// lifecycle state, its completion callbacks and its retry and cache
// configuration.
//
// The identity fields (Method, URL, Header, Body, Timeout, CacheTimeout
// and MaxRetries) are set at construction time by New and may be
// adjusted by the caller before the Request is handed to a dispatcher.
// Once a Request is in flight, its identity fields must not be changed
// except by BeforeAttempt event handlers, which run before the
// transport sees the Request.
//
// The lifecycle fields are unexported and are only changed through
// the state transition methods (Begin, Retry, Requeue, Complete, Fail),
// which are safe for concurrent use.
type Request struct {
	// ID uniquely identifies the Request in logs and traces. New
	// assigns a random UUID.
	ID string

	// Method specifies the HTTP method (GET, POST, PUT, etc.). It is
	// always upper case.
	Method string

	// URL specifies the URL to access, with any query parameters
	// supplied at construction time already merged into its query.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent. Keys are
	// canonicalized, so lookups are case-insensitive.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body
	// indicates no request body should be sent. A non-empty body is
	// always sent as the request entity, never appended to the URL.
	Body []byte

	// Timeout is the per-attempt timeout. Zero means the dispatcher's
	// timeout policy decides.
	Timeout time.Duration

	// CacheTimeout is the lifetime of a cached copy of a successful
	// response. Zero means the response is not cached.
	CacheTimeout time.Duration

	// MaxRetries is the maximum number of retries allowed by the
	// default retry policy after the initial attempt.
	MaxRetries int

	mu              sync.Mutex
	state           State
	attempts        int
	attemptTimeouts int
	lastTimedOut    bool
	start           time.Time
	response        *Response
	responseSet     bool
	onComplete      []Handler
	afterComplete   AfterHandler
	handled         interface{}
	data            context.Context
}

// New returns a new Pending Request for the given URL, configured by
// the given options.
//
// The URL must be absolute (have both a scheme and a host), otherwise
// an error wrapping ErrInvalidURL is returned. The method defaults to
// GET and is normalized to upper case. Query parameters supplied with
// Params or Param are encoded deterministically (sorted by key) and
// merged into the URL query.
func New(url string, opts ...Option) (*Request, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.err != nil {
		return nil, s.err
	}

	method := strings.ToUpper(s.method)
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("hydra/request: invalid method %q", s.method)
	}

	u, err := parseURL(url)
	if err != nil {
		return nil, err
	}
	if len(s.params) > 0 {
		q := s.params.Encode()
		if u.RawQuery == "" {
			u.RawQuery = q
		} else {
			u.RawQuery += "&" + q
		}
	}

	h := make(http.Header, len(s.header))
	for k, vs := range s.header {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("hydra/request: invalid header name %q", k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, fmt.Errorf("hydra/request: invalid value for header %q", k)
			}
			h.Add(k, v)
		}
	}

	b, err := BodyBytes(s.body)
	if err != nil {
		return nil, err
	}

	return &Request{
		ID:           uuid.NewString(),
		Method:       method,
		URL:          u,
		Header:       h,
		Body:         b,
		Timeout:      s.timeout,
		CacheTimeout: s.cacheTimeout,
		MaxRetries:   s.maxRetries,
	}, nil
}

func parseURL(url string) (*urlpkg.URL, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no scheme or host", ErrInvalidURL, url)
	}
	u.Host = removeEmptyPort(u.Host)
	return u, nil
}

// Host returns the scheme and host of the request URL, without path,
// query or fragment. For example, the host of
// "http://localhost:3000/whatever?hi=foo" is "http://localhost:3000".
func (r *Request) Host() string {
	return r.URL.Scheme + "://" + r.URL.Host
}

// String returns the method and URL of the request.
func (r *Request) String() string {
	return r.Method + " " + r.URL.String()
}

// SetValue allows event handlers to store arbitrary data in the
// request.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type, to avoid collisions between
// different handlers putting data into the same request.
func (r *Request) SetValue(key, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := r.data
	if ctx == nil {
		ctx = context.Background()
	}
	r.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this request for key,
// or nil if there is no value associated with key.
func (r *Request) Value(key interface{}) interface{} {
	r.mu.Lock()
	ctx := r.data
	r.mu.Unlock()
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}

func validMethod(method string) bool {
	/*
	     Method         = "OPTIONS"                ; Section 9.2
	                    | "GET"                    ; Section 9.3
	                    | "HEAD"                   ; Section 9.4
	                    | "POST"                   ; Section 9.5
	                    | "PUT"                    ; Section 9.6
	                    | "DELETE"                 ; Section 9.7
	                    | "TRACE"                  ; Section 9.8
	                    | "CONNECT"                ; Section 9.9
	                    | extension-method
	   extension-method = token
	     token          = 1*<any CHAR except CTLs or separators>

	   We don't need to check for length more than 1 because we always
	   interpret the empty string as "GET".
	*/
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
