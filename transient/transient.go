// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"net"
	"strconv"
	"syscall"
)

// A Category says whether, and why, a transport error is likely to go
// away if the attempt is repeated. Not means a retry would almost
// certainly fail the same way; every other Category means a retry has
// a fair chance of success.
type Category int

const (
	// Not is the Category of nil and of every error that is not
	// transient.
	Not Category = iota
	// Timeout is a client-side timeout: err, or an error it wraps, has
	// a Timeout method reporting true. The server may be briefly slow,
	// or a later attempt with a longer timeout may succeed.
	Timeout
	// ConnRefused is syscall.ECONNREFUSED. A service that is starting
	// or restarting refuses connections until it begins listening.
	ConnRefused
	// ConnReset is syscall.ECONNRESET: the peer sent an RST on an open
	// connection. Load balancers and services shutting down mid-response
	// both produce resets, and a fresh connection usually works.
	ConnReset
	// DNS is a *net.DNSError whose IsTemporary field is set, such as a
	// lookup the name server did not answer. An unknown host is Not.
	DNS
)

var categoryNames = []string{
	Not:         "Not",
	Timeout:     "Timeout",
	ConnRefused: "ConnRefused",
	ConnReset:   "ConnReset",
	DNS:         "DNS",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

var errnoCategories = map[syscall.Errno]Category{
	syscall.ECONNREFUSED: ConnRefused,
	syscall.ECONNRESET:   ConnReset,
}

// Categorize returns the Category of err, looking through the whole
// chain of wrapped errors. Timeout takes precedence over the other
// categories. A Temporary method is never consulted.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if c, ok := errnoCategories[errno]; ok {
			return c
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return DNS
	}

	return Not
}
