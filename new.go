// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/gogama/hydra/cache"
	rediscache "github.com/gogama/hydra/cache/redis"
	"github.com/gogama/hydra/config"
	"github.com/gogama/hydra/retry"
	"github.com/gogama/hydra/timeout"
	"github.com/gogama/hydra/transport"
)

// dialTimeout bounds the connectivity check New makes against a redis
// cache backend.
const dialTimeout = 5 * time.Second

// New assembles a Hydra from cfg. A nil cfg means config.Default().
//
// The returned Hydra's Handlers field is nil; install handlers before
// using it. Call Close when done with the Hydra to release the cache
// backend.
func New(cfg *config.Config) (*Hydra, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Hydra{
		MaxConcurrency: cfg.MaxConcurrency,
		RetryPolicy: retry.NewPolicy(retry.DefaultDecider,
			retry.NewExpWaiter(cfg.RetryBaseWait, cfg.RetryMaxWait, time.Now())),
		TimeoutPolicy: timeout.Infinite,
		Logger:        cfg.Log.NewLogger(),
	}

	switch cfg.Transport {
	case "resty":
		h.Transport = transport.NewResty(resty.New())
	default:
		h.Transport = transport.NewHTTP(&http.Client{})
	}

	if cfg.Timeout > 0 {
		h.TimeoutPolicy = timeout.Fixed(cfg.Timeout)
	}

	if cfg.RateLimit > 0 {
		h.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	switch cfg.Cache.Backend {
	case "memory":
		h.Cache = cache.NewMemory(cfg.Cache.MaxEntries)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		c, err := rediscache.Dial(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPrefix)
		if err != nil {
			return nil, err
		}
		h.Cache = c
	}

	return h, nil
}
