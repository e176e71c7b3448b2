// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Hydra to extend it with custom
// functionality such as logging, metrics or tracing.
type Event int

const (
	// AfterEnqueue identifies the event that occurs when a Request is
	// accepted by Enqueue, before the cache is consulted.
	//
	// When Hydra fires AfterEnqueue, the request is Pending and the
	// response passed to handlers is nil. Do does not fire this event.
	AfterEnqueue Event = iota
	// AfterCacheHit identifies the event that occurs when a live cache
	// entry satisfies a Request without any transport call.
	//
	// When Hydra fires AfterCacheHit, the request is already Completed
	// and the response is the cached copy (its Cached method returns
	// true).
	AfterCacheHit
	// BeforeAttempt identifies the event that occurs before each
	// individual transport attempt.
	//
	// When Hydra fires BeforeAttempt, the request is InFlight and the
	// response is nil. BeforeAttempt handlers may modify the request's
	// Header, for example to inject tracing headers, since the
	// transport has not yet seen the request.
	BeforeAttempt
	// AfterAttempt identifies the event that occurs after each
	// transport attempt, regardless of its outcome, and before the
	// retry policy is consulted.
	AfterAttempt
	// BeforeRetry identifies the event that occurs when the retry
	// policy has decided to retry a failed attempt.
	//
	// When Hydra fires BeforeRetry, the request is Retrying, its
	// attempt count has been incremented, and the response is the one
	// from the failed attempt. The backoff wait has not started yet.
	BeforeRetry
	// AfterRequestEnd identifies the event that occurs once a request
	// reaches a terminal state, before its completion callbacks run.
	AfterRequestEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"AfterEnqueue",
	"AfterCacheHit",
	"BeforeAttempt",
	"AfterAttempt",
	"BeforeRetry",
	"AfterRequestEnd",
}

// Events returns a slice containing all events which can occur during
// the life of a Request in a Hydra, in the order in which they would
// occur.
func Events() []Event {
	return []Event{
		AfterEnqueue,
		AfterCacheHit,
		BeforeAttempt,
		AfterAttempt,
		BeforeRetry,
		AfterRequestEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
