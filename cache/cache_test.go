// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/hydra/request"
)

func TestKey(t *testing.T) {
	newReq := func(url string, opts ...request.Option) *request.Request {
		r, err := request.New(url, opts...)
		require.NoError(t, err)
		return r
	}

	a := Key(newReq("http://localhost:3000/x", request.Param("q", "hi")))
	assert.Equal(t, "GET http://localhost:3000/x?q=hi e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", a)
	assert.Equal(t, a, Key(newReq("http://localhost:3000/x?q=hi")))
	assert.NotEqual(t, a, Key(newReq("http://localhost:3000/x", request.Param("q", "ho"))))
	assert.NotEqual(t, a, Key(newReq("http://localhost:3000/x?q=hi", request.Method("POST"))))
	assert.NotEqual(t,
		Key(newReq("http://localhost:3000/x", request.Method("POST"), request.Body("a"))),
		Key(newReq("http://localhost:3000/x", request.Method("POST"), request.Body("b"))))
	assert.Equal(t,
		Key(newReq("http://localhost:3000/x", request.Body("same"))),
		Key(newReq("http://localhost:3000/x", request.Body([]byte("same")), request.Header("X-Ignored", "1"))))
}

func TestCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := request.NewResponse(203, http.Header{"Content-Type": {"text/plain"}, "X-Multi": {"1", "2"}}, []byte("payload"), 42*time.Millisecond)
		b, err := Marshal(in)
		require.NoError(t, err)
		out, err := Unmarshal(b)
		require.NoError(t, err)
		assert.Equal(t, in.StatusCode(), out.StatusCode())
		assert.Equal(t, in.Header(), out.Header())
		assert.Equal(t, in.Body(), out.Body())
		assert.Equal(t, in.Elapsed(), out.Elapsed())
		assert.False(t, out.Cached())
		assert.NoError(t, out.Err())
	})
	t.Run("deterministic", func(t *testing.T) {
		in := request.NewResponse(200, http.Header{"B": {"2"}, "A": {"1"}, "C": {"3"}}, nil, 0)
		b1, err := Marshal(in)
		require.NoError(t, err)
		b2, err := Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
	})
	t.Run("empty", func(t *testing.T) {
		b, err := Marshal(request.NewResponse(204, nil, nil, 0))
		require.NoError(t, err)
		out, err := Unmarshal(b)
		require.NoError(t, err)
		assert.Equal(t, 204, out.StatusCode())
		assert.Nil(t, out.Header())
		assert.Empty(t, out.Body())
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := Unmarshal([]byte{0xff})
		assert.Error(t, err)
	})
}
