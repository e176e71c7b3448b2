// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/hydra/request"
)

// A Waiter says how long a Request whose attempt failed sits in the
// Retrying state before it is dispatched again. It is called with the
// same arguments as the Decider that approved the retry, and only when
// that Decider returned true.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Waiter interface {
	Wait(r *request.Request, resp *request.Response, attempt int) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as Waiters.
type WaiterFunc func(r *request.Request, resp *request.Response, attempt int) time.Duration

// Wait returns f(r, resp, attempt).
func (f WaiterFunc) Wait(r *request.Request, resp *request.Response, attempt int) time.Duration {
	return f(r, resp, attempt)
}

// DefaultWaiter backs off exponentially from 50 milliseconds up to one
// second, with full jitter.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, time.Second, time.Now())

// NewFixedWaiter returns a Waiter that always waits d.
func NewFixedWaiter(d time.Duration) Waiter {
	return WaiterFunc(func(*request.Request, *request.Response, int) time.Duration {
		return d
	})
}

// NewExpWaiter returns a Waiter whose wait grows exponentially with the
// attempt number:
//
//	ceil := min(base * 2**attempt, max)
//
// Base must be positive and max must be at least base.
//
// With a nil jitter the Waiter returns ceil itself. Otherwise it
// returns a uniformly random duration in [0, ceil), the "full jitter"
// scheme. The jitter source may be a seed, given as a time.Time, int
// or int64, or a ready-made *rand.Rand or rand.Source.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base <= 0 {
		panic("hydra/retry: base must be positive")
	}
	if max < base {
		panic("hydra/retry: max must be at least base")
	}
	return &expWaiter{base: base, max: max, rnd: newRand(jitter)}
}

type expWaiter struct {
	base, max time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func (w *expWaiter) Wait(_ *request.Request, _ *request.Response, attempt int) time.Duration {
	ceil := w.ceil(attempt)
	if w.rnd == nil {
		return ceil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Duration(w.rnd.Int63n(int64(ceil)))
}

// ceil doubles base once per attempt, capped at max.
func (w *expWaiter) ceil(attempt int) time.Duration {
	d := w.base
	for i := 0; i < attempt; i++ {
		if d > w.max/2 {
			return w.max
		}
		d *= 2
	}
	return d
}

func newRand(jitter interface{}) *rand.Rand {
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		return rand.New(rand.NewSource(j.UnixNano()))
	case int:
		return rand.New(rand.NewSource(int64(j)))
	case int64:
		return rand.New(rand.NewSource(j))
	case *rand.Rand:
		if j == nil {
			panic("hydra/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		return rand.New(j)
	default:
		panic("hydra/retry: invalid jitter type")
	}
}
