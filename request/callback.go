// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "fmt"

// A Handler consumes the response of a finished Request and produces a
// derived value. Handlers registered with OnComplete form the Request's
// completion chain.
type Handler interface {
	Handle(resp *Response) (interface{}, error)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as completion handlers.
type HandlerFunc func(resp *Response) (interface{}, error)

// Handle calls f(resp).
func (f HandlerFunc) Handle(resp *Response) (interface{}, error) {
	return f(resp)
}

// An AfterHandler consumes the value produced by the last completion
// handler.
type AfterHandler interface {
	HandleAfter(handled interface{}) error
}

// The AfterHandlerFunc type is an adapter to allow the use of ordinary
// functions as after-complete handlers.
type AfterHandlerFunc func(handled interface{}) error

// HandleAfter calls f(handled).
func (f AfterHandlerFunc) HandleAfter(handled interface{}) error {
	return f(handled)
}

// OnComplete appends h to the completion chain. A nil handler causes a
// panic.
func (r *Request) OnComplete(h Handler) {
	if h == nil {
		panic("hydra/request: nil handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onComplete = append(r.onComplete, h)
}

// SetOnComplete replaces the completion chain with hs. Calling it with
// no arguments clears the chain.
func (r *Request) SetOnComplete(hs ...Handler) {
	for _, h := range hs {
		if h == nil {
			panic("hydra/request: nil handler")
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onComplete = append([]Handler(nil), hs...)
}

// AfterComplete sets the single after-complete handler, replacing any
// previous one. A nil value clears it.
func (r *Request) AfterComplete(h AfterHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterComplete = h
}

// HandledResponse returns the value produced by the last completion
// handler during the most recent CallHandlers.
func (r *Request) HandledResponse() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handled
}

// CallHandlers runs the completion chain against the current response.
//
// Each completion handler is called in registration order and the
// value returned by the last one becomes the handled response. Then the
// after-complete handler, if set, is called once with the handled
// response. The current response may be nil.
//
// If a handler returns an error, the chain stops and the error is
// returned, annotated with the position of the failing handler. The
// handled response keeps the value of the last handler that succeeded.
//
// CallHandlers may be called any number of times; each call runs the
// whole chain again.
func (r *Request) CallHandlers() error {
	r.mu.Lock()
	hs := r.onComplete
	after := r.afterComplete
	resp := r.response
	r.mu.Unlock()

	for i, h := range hs {
		v, err := h.Handle(resp)
		if err != nil {
			return fmt.Errorf("hydra/request: completion handler %d: %w", i, err)
		}
		r.mu.Lock()
		r.handled = v
		r.mu.Unlock()
	}

	if after != nil {
		if err := after.HandleAfter(r.HandledResponse()); err != nil {
			return fmt.Errorf("hydra/request: after-complete handler: %w", err)
		}
	}

	return nil
}
