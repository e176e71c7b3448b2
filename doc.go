// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package hydra provides an HTTP request engine which runs requests one at
a time or in parallel batches, with retries, response caching and
completion callbacks.

Create a Hydra to begin making requests. The zero value is ready to use.

	h := &hydra.Hydra{}
	resp, err := h.Get(ctx, "https://www.example.com",
		request.Param("q", "hi"))
	...
	resp, err := h.Post(ctx, "https://www.example.com/upload", &buf,
		request.Header("Content-Type", "application/json"))

To run many requests in parallel, build each one with request.New,
attach completion callbacks, enqueue it, and run the batch:

	r, err := request.New("https://www.example.com/users/1",
		request.MaxRetries(3), request.CacheTimeout(time.Minute))
	r.OnComplete(request.HandlerFunc(
		func(resp *request.Response) (interface{}, error) {
			return decodeUser(resp.Body())
		}))
	_ = h.Enqueue(ctx, r)
	...
	err := h.Run(ctx)

Run returns once every enqueued request has completed or failed. Each
request's callbacks run exactly once, after its final attempt.

For control over the engine's retry decisions and timing, create a
custom retry policy using components from package retry:

	retryWaiter := retry.NewExpWaiter(250*time.Millisecond, 5*time.Second, time.Now())
	retryPolicy := retry.NewPolicy(retry.MaxRetries.And(retry.TransportErr.Or(retry.StatusCode(503))), retryWaiter)
	h := &hydra.Hydra{
		RetryPolicy: retryPolicy,
	}

For control over individual attempt timeouts, set a timeout policy
using package timeout, or set a timeout on the request itself:

	h := &hydra.Hydra{
		TimeoutPolicy: timeout.Fixed(10*time.Second),
	}

A zero-value Hydra does not cache. Set its Cache field to a
cache.Memory to reuse responses within the process, or, to share cached
responses between processes, to a Redis cache from package cache/redis:

	c, err := redis.Dial(ctx, "localhost:6379", "myapp:")
	h := &hydra.Hydra{
		Cache: c,
	}

To hook into the fine-grained details of a request's life, install a
handler into the appropriate handler chain:

	handlers := &hydra.HandlerGroup{}
	handlers.PushBack(hydra.BeforeAttempt, hydra.HandlerFunc(
		func(_ hydra.Event, r *request.Request, _ *request.Response) {
			log.Printf("Attempt %d to %s", r.Attempts(), r.URL)
		}))
	h := &hydra.Hydra{
		Handlers: handlers,
	}

Packages metrics and tracing provide ready-made handler sets.

To build a Hydra from environment variables, use package config:

	cfg, err := config.Load("")
	h, err := hydra.New(cfg)
	defer h.Close()
*/
package hydra
