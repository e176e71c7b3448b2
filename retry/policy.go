// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/hydra/request"
)

// A Policy controls if and how failed attempts are retried. After every
// failed attempt, the dispatcher asks the Policy whether a retry should
// be done and, if so, how long to wait before re-dispatching the
// request.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
//
// A Policy is composed of the Decider and Waiter interfaces. Use one of
// the built-in policies, DefaultPolicy or Never, or construct a policy
// with NewPolicy from existing Decider and Waiter implementations.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy composes DefaultDecider for retry decisions and
// DefaultWaiter for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries, whatever the request's
// MaxRetries.
var Never Policy = policy{Times(0), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("hydra/retry: nil decider")
	}
	if w == nil {
		panic("hydra/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(r *request.Request, resp *request.Response, attempt int) bool {
	return p.decider.Decide(r, resp, attempt)
}

func (p policy) Wait(r *request.Request, resp *request.Response, attempt int) time.Duration {
	return p.waiter.Wait(r, resp, attempt)
}
