// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"github.com/gogama/hydra/request"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Hydra.
//
// A HandlerGroup must be fully populated before the Hydra using it
// starts processing requests. It is not safe to call PushBack while
// events are being fired.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("hydra: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, r *request.Request, resp *request.Response) {
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, r, resp)
	}
}

func run(chain []Handler, evt Event, r *request.Request, resp *request.Response) {
	for _, h := range chain {
		h.Handle(evt, r, resp)
	}
}

// A Handler handles the occurrence of an event during the life of a
// Request in a Hydra. The response is nil for events which precede
// the end of an attempt.
type Handler interface {
	Handle(Event, *request.Request, *request.Response)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *request.Request, *request.Response)

// Handle calls f(evt, r, resp).
func (f HandlerFunc) Handle(evt Event, r *request.Request, resp *request.Response) {
	f(evt, r, resp)
}
