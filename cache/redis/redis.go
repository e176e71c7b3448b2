// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package redis provides a cache.Cache shared between processes through
// a Redis server. Responses are stored CBOR-encoded with cache.Marshal,
// and expiry is delegated to Redis key TTLs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gogama/hydra/cache"
	"github.com/gogama/hydra/request"
)

// Cache is a cache.Cache backed by Redis.
type Cache struct {
	client redis.UniversalClient
	prefix string
}

// New returns a Cache using client. Every key is prefixed with prefix,
// so several dispatchers can share a Redis database.
func New(client redis.UniversalClient, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Dial connects to the Redis server at addr and verifies the connection
// with PING.
func Dial(ctx context.Context, addr, prefix string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("hydra/cache/redis: ping %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Get returns the response stored under key, or cache.ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) (*request.Response, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("hydra/cache/redis: get: %w", err)
	}
	return cache.Unmarshal(b)
}

// Set stores resp under key with a TTL of lifetime.
func (c *Cache) Set(ctx context.Context, key string, resp *request.Response, lifetime time.Duration) error {
	if lifetime <= 0 {
		return nil
	}
	b, err := cache.Marshal(resp)
	if err != nil {
		return err
	}
	if err = c.client.Set(ctx, c.prefix+key, b, lifetime).Err(); err != nil {
		return fmt.Errorf("hydra/cache/redis: set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
