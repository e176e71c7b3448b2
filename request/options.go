// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net/http"
	urlpkg "net/url"
	"time"
)

// An Option configures a Request under construction by New.
type Option func(*settings)

type settings struct {
	method       string
	params       urlpkg.Values
	header       http.Header
	body         interface{}
	timeout      time.Duration
	cacheTimeout time.Duration
	maxRetries   int
	err          error
}

func (s *settings) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Method sets the HTTP method. The method is case-insensitive; an
// empty method means GET.
func Method(m string) Option {
	return func(s *settings) {
		s.method = m
	}
}

// Params adds query parameters which are merged into the request URL.
// Repeated use accumulates parameters.
func Params(v urlpkg.Values) Option {
	return func(s *settings) {
		for k, vs := range v {
			for _, x := range vs {
				s.param(k, x)
			}
		}
	}
}

// Param adds a single query parameter which is merged into the request
// URL.
func Param(key, value string) Option {
	return func(s *settings) {
		s.param(key, value)
	}
}

func (s *settings) param(key, value string) {
	if s.params == nil {
		s.params = make(urlpkg.Values)
	}
	s.params.Add(key, value)
}

// Header adds a request header field.
func Header(key, value string) Option {
	return func(s *settings) {
		s.hdr().Add(key, value)
	}
}

// Headers adds every field in h to the request headers.
func Headers(h http.Header) Option {
	return func(s *settings) {
		for k, vs := range h {
			for _, v := range vs {
				s.hdr().Add(k, v)
			}
		}
	}
}

func (s *settings) hdr() http.Header {
	if s.header == nil {
		s.header = make(http.Header)
	}
	return s.header
}

// Body sets the request body. The body may be nil, or a string,
// []byte, io.Reader, or io.ReadCloser, and is buffered according to
// the rules of BodyBytes.
func Body(body interface{}) Option {
	return func(s *settings) {
		s.body = body
	}
}

// Timeout sets the per-attempt timeout. It may not be negative.
func Timeout(d time.Duration) Option {
	return func(s *settings) {
		if d < 0 {
			s.fail(errors.New("hydra/request: negative timeout"))
			return
		}
		s.timeout = d
	}
}

// CacheTimeout sets how long a successful response may be served from
// the dispatcher's cache. It may not be negative.
func CacheTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d < 0 {
			s.fail(errors.New("hydra/request: negative cache timeout"))
			return
		}
		s.cacheTimeout = d
	}
}

// MaxRetries sets the maximum number of retries after the initial
// attempt. It may not be negative.
func MaxRetries(n int) Option {
	return func(s *settings) {
		if n < 0 {
			s.fail(errors.New("hydra/request: negative max retries"))
			return
		}
		s.maxRetries = n
	}
}
