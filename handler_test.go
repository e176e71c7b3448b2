// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"fmt"
	"testing"

	"github.com/gogama/hydra/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var reqs []*request.Request
	h1 := &testHandler{seq: 1, evts: &evts, reqs: &reqs}
	h2 := &testHandler{seq: 2, evts: &evts, reqs: &reqs}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.Panics(t, func() { g.PushBack(AfterEnqueue, nil) })
		assert.Panics(t, func() { g.PushBack(Event(123), h1) })
		g.PushBack(AfterEnqueue, h1)
		g.PushBack(AfterEnqueue, h2)
		g.PushBack(AfterAttempt, h1)
	})
	t.Run("run", func(t *testing.T) {
		r1, err := request.New("http://one.example")
		require.NoError(t, err)
		r2, err := request.New("http://two.example")
		require.NoError(t, err)
		assert.Empty(t, evts)
		assert.Empty(t, reqs)
		g.run(BeforeRetry, r1, nil)
		assert.Empty(t, evts)
		assert.Empty(t, reqs)
		g.run(AfterEnqueue, r1, nil)
		assert.Equal(t, []string{"1.AfterEnqueue", "2.AfterEnqueue"}, evts)
		assert.Equal(t, []*request.Request{r1, r1}, reqs)
		evts = evts[:0]
		reqs = reqs[:0]
		g.run(AfterAttempt, r2, nil)
		assert.Equal(t, []string{"1.AfterAttempt"}, evts)
		assert.Equal(t, []*request.Request{r2}, reqs)
	})
	t.Run("zero value", func(t *testing.T) {
		var empty HandlerGroup
		assert.NotPanics(t, func() { empty.run(AfterRequestEnd, nil, nil) })
	})
}

type testHandler struct {
	seq  int
	evts *[]string
	reqs *[]*request.Request
}

func (h *testHandler) Handle(evt Event, r *request.Request, _ *request.Response) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.reqs = append(*h.reqs, r)
}

func TestHandlerFunc(t *testing.T) {
	var _evt Event
	var _r *request.Request
	var _resp *request.Response
	f := func(evt Event, r *request.Request, resp *request.Response) {
		_evt = evt
		_r = r
		_resp = resp
	}
	h := HandlerFunc(f)
	r := &request.Request{}
	resp := request.NewResponse(204, nil, nil, 0)
	h.Handle(AfterAttempt, r, resp)

	assert.Equal(t, AfterAttempt, _evt)
	assert.Same(t, r, _r)
	assert.Same(t, resp, _resp)
}
