// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gogama/hydra/request"
)

// A loop holds the state of one Run. Every field except sem, results
// and waiting is owned by the goroutine that called Run; waiting is
// guarded by the Hydra's mutex because backoff timers touch it.
type loop struct {
	h         *Hydra
	ctx       context.Context
	sem       *semaphore.Weighted
	results   chan result
	inflight  int
	waiting   map[*request.Request]*time.Timer
	cancelled bool
	errs      []error
}

type result struct {
	r    *request.Request
	resp *request.Response
}

func newLoop(ctx context.Context, h *Hydra) *loop {
	return &loop{
		h:       h,
		ctx:     ctx,
		sem:     semaphore.NewWeighted(int64(h.maxConcurrency())),
		results: make(chan result),
		waiting: make(map[*request.Request]*time.Timer),
	}
}

// dispatch starts attempts for queued Requests until the queue is
// empty or the concurrency bound is reached.
func (l *loop) dispatch() {
	h := l.h
	for l.sem.TryAcquire(1) {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			l.sem.Release(1)
			return
		}
		r := h.queue[0]
		h.queue[0] = nil
		h.queue = h.queue[1:]
		h.mu.Unlock()

		if err := r.Begin(); err != nil {
			l.sem.Release(1)
			h.logger().Warn().Str("id", r.ID).Err(err).Msg("dropped queued request")
			continue
		}
		h.fire(BeforeAttempt, r, nil)
		h.logger().Debug().
			Str("id", r.ID).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Int("attempt", r.Attempts()).
			Msg("attempt started")
		l.inflight++
		go l.work(r)
	}
}

// work runs one attempt. The semaphore slot is released before the
// result is handed back so the loop can dispatch while it is busy
// receiving.
func (l *loop) work(r *request.Request) {
	resp := l.h.attempt(l.ctx, r)
	l.sem.Release(1)
	l.results <- result{r: r, resp: resp}
}

func (l *loop) handle(res result) {
	h := l.h
	h.fire(AfterAttempt, res.r, res.resp)
	if wait, ok := h.retry(l.ctx, res.r, res.resp); ok {
		l.schedule(res.r, wait)
		return
	}
	if err := h.finish(l.ctx, res.r, res.resp); err != nil {
		l.errs = append(l.errs, err)
	}
}

// schedule returns r to the queue once wait has passed.
func (l *loop) schedule(r *request.Request, wait time.Duration) {
	h := l.h
	h.mu.Lock()
	defer h.mu.Unlock()
	l.waiting[r] = time.AfterFunc(wait, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := l.waiting[r]; !ok {
			return
		}
		delete(l.waiting, r)
		_ = r.Requeue()
		h.queue = append(h.queue, r)
		h.signal()
	})
}

// abandon stops dispatching and moves every Request waiting out a
// backoff back to the queue as Pending.
func (l *loop) abandon() {
	l.cancelled = true
	h := l.h
	h.mu.Lock()
	defer h.mu.Unlock()
	for r, t := range l.waiting {
		t.Stop()
		delete(l.waiting, r)
		_ = r.Requeue()
		h.queue = append(h.queue, r)
	}
}

// idle reports whether the Run is over. If so, the Hydra is marked as
// no longer running, under the same lock, so that a concurrent Enqueue
// either joins this Run or waits for the next one.
func (l *loop) idle() bool {
	if l.inflight > 0 {
		return false
	}
	h := l.h
	h.mu.Lock()
	defer h.mu.Unlock()
	if !l.cancelled && (len(h.queue) > 0 || len(l.waiting) > 0) {
		return false
	}
	h.running = false
	return true
}
