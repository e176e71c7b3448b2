// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/hydra/cache"
	"github.com/gogama/hydra/request"
)

func setupTestRedis(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Dial(context.Background(), mr.Addr(), "hydra:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		c, _ := setupTestRedis(t)
		resp, err := c.Get(ctx, "GET http://x ")
		assert.Nil(t, resp)
		assert.Same(t, cache.ErrNotFound, err)
	})

	t.Run("round trip", func(t *testing.T) {
		c, mr := setupTestRedis(t)
		in := request.NewResponse(200, http.Header{"Etag": {"abc"}}, []byte("hello"), 5*time.Millisecond)
		require.NoError(t, c.Set(ctx, "k", in, time.Minute))
		assert.True(t, mr.Exists("hydra:k"))
		assert.Equal(t, time.Minute, mr.TTL("hydra:k"))
		out, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 200, out.StatusCode())
		assert.Equal(t, "abc", out.Header().Get("ETag"))
		assert.Equal(t, []byte("hello"), out.Body())
		assert.Equal(t, 5*time.Millisecond, out.Elapsed())
	})

	t.Run("expiry", func(t *testing.T) {
		c, mr := setupTestRedis(t)
		require.NoError(t, c.Set(ctx, "k", request.NewResponse(204, nil, nil, 0), time.Second))
		mr.FastForward(2 * time.Second)
		_, err := c.Get(ctx, "k")
		assert.Same(t, cache.ErrNotFound, err)
	})

	t.Run("non-positive lifetime is a no-op", func(t *testing.T) {
		c, mr := setupTestRedis(t)
		require.NoError(t, c.Set(ctx, "k", request.NewResponse(200, nil, nil, 0), 0))
		assert.False(t, mr.Exists("hydra:k"))
	})

	t.Run("corrupt entry", func(t *testing.T) {
		c, mr := setupTestRedis(t)
		require.NoError(t, mr.Set("hydra:k", "\xff\xff"))
		_, err := c.Get(ctx, "k")
		require.Error(t, err)
		assert.False(t, errors.Is(err, cache.ErrNotFound))
	})

	t.Run("server down", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		c := New(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "")
		defer func() { _ = c.Close() }()
		mr.Close()
		_, err = c.Get(ctx, "k")
		require.Error(t, err)
		assert.False(t, errors.Is(err, cache.ErrNotFound))
	})
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	c, err := Dial(context.Background(), addr, "")
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(client, "")
	defer func() { _ = c.Close() }()
	require.NoError(t, c.Set(context.Background(), "plain", request.NewResponse(200, nil, []byte("x"), 0), time.Hour))
	assert.True(t, mr.Exists("plain"))
}
