// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/hydra/request"
)

// A Policy defines a timeout policy which may be plugged into the
// dispatcher to direct how to set the timeout for the initial attempt
// of a request, as well as for any subsequent retries. The policy only
// applies to requests which do not carry their own Timeout.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next attempt of r. A
	// zero return value means the attempt has no deadline.
	Timeout(r *request.Request) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets no deadline, so
// requests without their own Timeout wait as long as the transport
// allows.
var DefaultPolicy = Infinite

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(0)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if the remote service often exhibits one-off slow
// response times that can be cured by quickly timing out and retrying,
// but you also need to protect against retry storms when the service
// goes through a burst of slowness.
//
// Parameter usual represents the timeout value the policy will return
// for an initial attempt and for any retry where the immediately
// preceding attempt did not time out.
//
// Parameter after contains timeout values the policy will return if
// the previous attempt timed out. If this was the first timeout of the
// request, after[0] is returned; if the second, after[1], and so on.
// If more attempts have timed out than after has elements, then the
// last element of after is returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout but if
// the preceding attempt timed out and was the first timeout of the
// request, it will use 1 second; and if the previous attempt timed
// out and was not the first timeout, it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

// For returns the timeout for the next attempt of r: the request's own
// Timeout if it has one, otherwise the value chosen by p. A nil p
// means DefaultPolicy.
func For(p Policy, r *request.Request) time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	if p == nil {
		p = DefaultPolicy
	}
	return p.Timeout(r)
}

type policy []time.Duration

func (p policy) Timeout(r *request.Request) time.Duration {
	if !r.LastAttemptTimedOut() {
		return p[0]
	}

	i := r.AttemptTimeouts()
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
