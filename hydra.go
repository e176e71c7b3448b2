// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gogama/hydra/cache"
	"github.com/gogama/hydra/request"
	"github.com/gogama/hydra/retry"
	"github.com/gogama/hydra/timeout"
	"github.com/gogama/hydra/transport"
)

// DefaultMaxConcurrency is the number of attempts a Hydra runs at once
// when its MaxConcurrency field is zero.
const DefaultMaxConcurrency = 200

var (
	// ErrNotPending is returned by Enqueue and Do when the Request is
	// not in the Pending state.
	ErrNotPending = errors.New("hydra: request not pending")

	// ErrRunning is returned by Run when another Run call on the same
	// Hydra has not yet returned.
	ErrRunning = errors.New("hydra: already running")
)

var (
	emptyHandlers = HandlerGroup{}
	nopLogger     = zerolog.Nop()
)

// A Hydra dispatches Requests, one at a time with Do or in parallel
// batches with Enqueue and Run. Its zero value is a valid
// configuration.
//
// The zero value Hydra uses transport.NewHTTP(http.DefaultClient) as
// the transport, timeout.DefaultPolicy as the timeout policy,
// retry.DefaultPolicy as the retry policy, no cache, no rate limit, an
// empty handler group and DefaultMaxConcurrency as the concurrency
// bound.
//
// On top of the transport, Hydra adds the following features:
//
// • Hydra retries failed attempts using a customizable retry policy,
// and runs a Request's completion callbacks exactly once, after the
// final attempt;
//
// • Hydra sets individual attempt timeouts using a customizable timeout
// policy, unless the Request carries its own timeout;
//
// • Hydra serves successful responses from a cache for as long as the
// Request's CacheTimeout allows; and
//
// • Hydra invokes user-provided handler functions at designated plug-in
// points in each Request's life, allowing features such as metrics and
// tracing to be mixed in from outside packages.
//
// A Hydra is safe for concurrent use by multiple goroutines, but only
// one Run may be active at a time.
type Hydra struct {
	// Transport performs individual HTTP exchanges.
	//
	// If Transport is nil, transport.NewHTTP(http.DefaultClient) is
	// used.
	Transport transport.Handle
	// RetryPolicy decides when to retry failed attempts and how long
	// to wait after a failed attempt before retrying.
	//
	// If RetryPolicy is nil, retry.DefaultPolicy is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy specifies how to set timeouts on individual
	// attempts of Requests that have no Timeout of their own.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Cache stores successful responses for Requests with a positive
	// CacheTimeout.
	//
	// If Cache is nil, no caching is done.
	Cache cache.Cache
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during the life of a Request.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// MaxConcurrency bounds the number of attempts Run keeps in flight
	// at once.
	//
	// If MaxConcurrency is zero or negative, DefaultMaxConcurrency is
	// used.
	MaxConcurrency int
	// Limiter, if not nil, paces attempts. Each attempt waits for a
	// token before the transport is called.
	Limiter *rate.Limiter
	// Logger receives debug records for each step of a Request's life
	// and warnings for cache backend errors.
	//
	// If Logger is nil, nothing is logged.
	Logger *zerolog.Logger

	mu      sync.Mutex
	queue   []*request.Request
	running bool
	wake    chan struct{}
}

// Enqueue adds a Pending Request to the queue processed by Run.
//
// If the Hydra has a Cache and the Request has a positive CacheTimeout,
// the cache is consulted first. On a hit, the Request is completed
// immediately with the cached response, its completion callbacks run
// on the calling goroutine, and no transport call is made. Any
// callback error is returned.
//
// A Request enqueued while Run is active joins the running batch.
func (h *Hydra) Enqueue(ctx context.Context, r *request.Request) error {
	if r.State() != request.Pending {
		return ErrNotPending
	}

	h.fire(AfterEnqueue, r, nil)
	h.logger().Debug().
		Str("id", r.ID).
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Msg("enqueued")

	if resp, ok := h.lookup(ctx, r); ok {
		return h.serveCached(r, resp)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, r)
	if h.running {
		h.signal()
	}
	return nil
}

// Run processes queued Requests until none is Pending, InFlight or
// Retrying.
//
// At most MaxConcurrency attempts are in flight at once. Each attempt
// runs on its own goroutine; everything else, including retry
// decisions, cache writes, event handlers and completion callbacks,
// runs on the goroutine that called Run. A Request waiting out a retry
// backoff does not hold up other Requests.
//
// The returned error joins every completion callback error. If ctx is
// cancelled, Run stops dispatching new attempts, lets in-flight
// attempts fail, returns Requests that were queued or waiting to retry
// to the Pending state for a later Run, and includes ctx.Err() in the
// returned error.
//
// If another Run on the same Hydra is active, Run returns ErrRunning.
func (h *Hydra) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrRunning
	}
	h.running = true
	if h.wake == nil {
		h.wake = make(chan struct{}, 1)
	}
	h.mu.Unlock()

	l := newLoop(ctx, h)
	for {
		if !l.cancelled && ctx.Err() != nil {
			l.abandon()
		}
		if !l.cancelled {
			l.dispatch()
		}
		if l.idle() {
			break
		}

		var done <-chan struct{}
		if !l.cancelled {
			done = ctx.Done()
		}
		select {
		case res := <-l.results:
			l.inflight--
			l.handle(res)
		case <-h.wake:
		case <-done:
			l.abandon()
		}
	}

	return errors.Join(append(l.errs, ctx.Err())...)
}

// Do runs a single Pending Request to completion on the calling
// goroutine and returns its final response.
//
// Do follows the same cache, retry, event and callback rules as Run.
// The returned error is the final attempt's transport error, if any,
// joined with the completion callback error, if any. An HTTP error
// status is not an error.
//
// If ctx is cancelled while Do is waiting to retry, the Request is
// returned to the Pending state and Do returns ctx.Err() with a nil
// response.
func (h *Hydra) Do(ctx context.Context, r *request.Request) (*request.Response, error) {
	if r.State() != request.Pending {
		return nil, ErrNotPending
	}

	if resp, ok := h.lookup(ctx, r); ok {
		return resp, h.serveCached(r, resp)
	}

	for {
		if err := r.Begin(); err != nil {
			return nil, err
		}
		h.fire(BeforeAttempt, r, nil)
		resp := h.attempt(ctx, r)
		h.fire(AfterAttempt, r, resp)

		wait, ok := h.retry(ctx, r, resp)
		if !ok {
			cbErr := h.finish(ctx, r, resp)
			if final := r.Response(); final != nil {
				resp = final
			}
			switch {
			case cbErr == nil:
				return resp, resp.Err()
			case resp.Err() == nil:
				return resp, cbErr
			default:
				return resp, errors.Join(resp.Err(), cbErr)
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			_ = r.Requeue()
		case <-ctx.Done():
			timer.Stop()
			_ = r.Requeue()
			return nil, ctx.Err()
		}
	}
}

// Get issues a GET to the specified URL using Do.
func (h *Hydra) Get(ctx context.Context, url string, opts ...request.Option) (*request.Response, error) {
	return Get(ctx, h, url, opts...)
}

// Head issues a HEAD to the specified URL using Do.
func (h *Hydra) Head(ctx context.Context, url string, opts ...request.Option) (*request.Response, error) {
	return Head(ctx, h, url, opts...)
}

// Post issues a POST with the given body to the specified URL using
// Do. The body may be any type accepted by request.Body.
func (h *Hydra) Post(ctx context.Context, url string, body interface{}, opts ...request.Option) (*request.Response, error) {
	return Post(ctx, h, url, body, opts...)
}

// Put issues a PUT with the given body to the specified URL using Do.
// The body may be any type accepted by request.Body.
func (h *Hydra) Put(ctx context.Context, url string, body interface{}, opts ...request.Option) (*request.Response, error) {
	return Put(ctx, h, url, body, opts...)
}

// Delete issues a DELETE to the specified URL using Do.
func (h *Hydra) Delete(ctx context.Context, url string, opts ...request.Option) (*request.Response, error) {
	return Delete(ctx, h, url, opts...)
}

// CloseIdleConnections invokes the same method on the Hydra's
// transport. If the transport has no CloseIdleConnections method, this
// method does nothing.
func (h *Hydra) CloseIdleConnections() {
	if ic, ok := h.transport().(transport.IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// Close closes idle transport connections and releases the cache, if
// the cache has a Close method.
func (h *Hydra) Close() error {
	h.CloseIdleConnections()
	if c, ok := h.Cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Pending returns the number of Requests waiting in the queue.
func (h *Hydra) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

func (h *Hydra) attempt(ctx context.Context, r *request.Request) *request.Response {
	start := time.Now()
	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx); err != nil {
			return request.NewErrorResponse(transport.Error(r, err), time.Since(start))
		}
	}

	res, err := h.transport().Perform(ctx, r, timeout.For(h.TimeoutPolicy, r))
	if err != nil {
		return request.NewErrorResponse(transport.Error(r, err), time.Since(start))
	}
	return res.Response()
}

// retry consults the retry policy about a finished attempt. If a retry
// is due, the Request is moved to Retrying and the backoff is returned.
func (h *Hydra) retry(ctx context.Context, r *request.Request, resp *request.Response) (time.Duration, bool) {
	if resp.OK() || ctx.Err() != nil {
		return 0, false
	}

	p := h.retryPolicy()
	attempt := r.Attempts()
	if !p.Decide(r, resp, attempt) {
		return 0, false
	}
	wait := p.Wait(r, resp, attempt)
	if err := r.Retry(resp); err != nil {
		return 0, false
	}

	h.fire(BeforeRetry, r, resp)
	h.logger().Debug().
		Str("id", r.ID).
		Int("attempt", attempt).
		Int("status", resp.StatusCode()).
		Err(resp.Err()).
		Dur("wait", wait).
		Msg("retrying")
	return wait, true
}

// finish moves the Request to its terminal state, populates the cache
// and runs the completion callbacks. It returns the callback error.
//
// A response assigned with SetResponse by an AfterAttempt handler takes
// the place of the attempt's own response.
func (h *Hydra) finish(ctx context.Context, r *request.Request, resp *request.Response) error {
	assign := resp
	if set := r.Response(); set != nil {
		resp, assign = set, nil
	}
	var err error
	if resp.Err() != nil {
		err = r.Fail(assign)
	} else {
		err = r.Complete(assign)
	}
	if err != nil {
		return err
	}

	if h.Cache != nil && r.CacheTimeout > 0 && resp.OK() {
		if err = h.Cache.Set(context.WithoutCancel(ctx), cache.Key(r), resp, r.CacheTimeout); err != nil {
			h.logger().Warn().Str("id", r.ID).Err(err).Msg("cache write failed")
		}
	}

	h.fire(AfterRequestEnd, r, resp)
	h.logger().Debug().
		Str("id", r.ID).
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Stringer("state", r.State()).
		Int("attempt", r.Attempts()).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Elapsed()).
		Err(resp.Err()).
		Msg("request ended")
	return r.CallHandlers()
}

func (h *Hydra) lookup(ctx context.Context, r *request.Request) (*request.Response, bool) {
	if h.Cache == nil || r.CacheTimeout <= 0 {
		return nil, false
	}
	resp, err := h.Cache.Get(ctx, cache.Key(r))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			h.logger().Warn().Str("id", r.ID).Err(err).Msg("cache read failed")
		}
		return nil, false
	}
	return resp.AsCached(), true
}

func (h *Hydra) serveCached(r *request.Request, resp *request.Response) error {
	if err := r.Complete(resp); err != nil {
		return err
	}
	h.fire(AfterCacheHit, r, resp)
	h.fire(AfterRequestEnd, r, resp)
	h.logger().Debug().
		Str("id", r.ID).
		Str("url", r.URL.String()).
		Int("status", resp.StatusCode()).
		Msg("cache hit")
	return r.CallHandlers()
}

// signal wakes the Run loop. The caller must hold h.mu.
func (h *Hydra) signal() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *Hydra) fire(evt Event, r *request.Request, resp *request.Response) {
	handlers := h.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(evt, r, resp)
}

func (h *Hydra) transport() transport.Handle {
	if h.Transport == nil {
		return transport.NewHTTP(http.DefaultClient)
	}
	return h.Transport
}

func (h *Hydra) retryPolicy() retry.Policy {
	if h.RetryPolicy == nil {
		return retry.DefaultPolicy
	}
	return h.RetryPolicy
}

func (h *Hydra) maxConcurrency() int {
	if h.MaxConcurrency < 1 {
		return DefaultMaxConcurrency
	}
	return h.MaxConcurrency
}

func (h *Hydra) logger() *zerolog.Logger {
	if h.Logger == nil {
		return &nopLogger
	}
	return h.Logger
}
