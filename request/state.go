// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a Request.
type State int

const (
	// Pending means the Request is waiting to be dispatched. This is
	// the state of a newly constructed Request, and the state a
	// Request returns to after waiting out a retry backoff.
	Pending State = iota
	// InFlight means a transport attempt is underway.
	InFlight
	// Completed means the Request finished with a response, either a
	// successful exchange or one served from cache. It is terminal.
	Completed
	// Failed means the Request ran out of retries. It is terminal.
	Failed
	// Retrying means the last attempt failed and the Request is
	// waiting out a backoff before being dispatched again.
	Retrying
)

var stateNames = []string{
	Pending:   "Pending",
	InFlight:  "InFlight",
	Completed: "Completed",
	Failed:    "Failed",
	Retrying:  "Retrying",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s is Completed or Failed.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// State returns the current lifecycle state.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Attempts returns the number of retries made so far. It is zero
// during the initial attempt, one during the first retry, and so on.
func (r *Request) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// AttemptTimeouts returns the number of finished attempts which ended
// in a timeout.
func (r *Request) AttemptTimeouts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attemptTimeouts
}

// LastAttemptTimedOut reports whether the most recently finished
// attempt ended in a timeout.
func (r *Request) LastAttemptTimedOut() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTimedOut
}

// Start returns the time the Request was first dispatched, or the zero
// time if it never has been.
func (r *Request) Start() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start
}

// Response returns the response of the current attempt, or nil if none
// has been set.
func (r *Request) Response() *Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response
}

// SetResponse assigns the response of the current attempt. It is meant
// for callers driving a Request by hand, for example to run its
// callback chain against a canned response. A response may be assigned
// only once per attempt; a second assignment returns ErrResponseSet.
func (r *Request) SetResponse(resp *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setResponse(resp)
}

// Begin transitions the Request from Pending to InFlight, starting a
// fresh attempt.
func (r *Request) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(Pending, InFlight); err != nil {
		return err
	}
	if r.start.IsZero() {
		r.start = time.Now()
	}
	r.response = nil
	r.responseSet = false
	r.state = InFlight
	return nil
}

// Retry transitions the Request from InFlight to Retrying, recording
// the outcome of the failed attempt and incrementing the attempt
// count. The failed attempt's response is not retained.
func (r *Request) Retry(last *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(InFlight, Retrying); err != nil {
		return err
	}
	r.record(last)
	r.attempts++
	r.response = nil
	r.responseSet = false
	r.state = Retrying
	return nil
}

// Requeue transitions the Request from Retrying back to Pending.
func (r *Request) Requeue() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(Retrying, Pending); err != nil {
		return err
	}
	r.state = Pending
	return nil
}

// Complete transitions the Request from InFlight to Completed, or from
// Pending to Completed for a response served from cache, and assigns
// resp as its response. If resp is nil, the response already assigned
// with SetResponse is kept.
func (r *Request) Complete(resp *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Pending && r.state != InFlight {
		return r.transitionErr(Completed)
	}
	return r.finish(Completed, resp)
}

// Fail transitions the Request from InFlight to Failed and assigns
// resp as its response. If resp is nil, the response already assigned
// with SetResponse is kept.
func (r *Request) Fail(resp *Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(InFlight, Failed); err != nil {
		return err
	}
	return r.finish(Failed, resp)
}

func (r *Request) finish(to State, resp *Response) error {
	if resp != nil {
		if err := r.setResponse(resp); err != nil {
			return err
		}
	}
	if r.state == InFlight {
		r.record(r.response)
	}
	r.state = to
	return nil
}

func (r *Request) setResponse(resp *Response) error {
	if r.responseSet {
		return ErrResponseSet
	}
	r.response = resp
	r.responseSet = true
	return nil
}

func (r *Request) record(resp *Response) {
	r.lastTimedOut = resp != nil && resp.Timeout()
	if r.lastTimedOut {
		r.attemptTimeouts++
	}
}

func (r *Request) check(from, to State) error {
	if r.state != from {
		return r.transitionErr(to)
	}
	return nil
}

func (r *Request) transitionErr(to State) error {
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.state, to)
}
