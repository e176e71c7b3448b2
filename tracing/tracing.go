// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tracing provides an event handler set which records
// OpenTelemetry spans for the requests a hydra.Hydra processes and
// propagates W3C trace context to the servers it calls.
//
// Each request gets a client span covering its whole life, from the
// first attempt (or the cache hit) to its end. Each attempt gets a
// child span, and the attempt span's context is injected into the
// request headers before the transport sends them.
package tracing

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/hydra"
	"github.com/gogama/hydra/request"
)

// ScopeName is the instrumentation scope name of the tracer.
const ScopeName = "github.com/gogama/hydra"

type (
	parentKey  struct{}
	requestKey struct{}
	attemptKey struct{}
)

// A Tracer records spans through its event handlers.
type Tracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// New returns a Tracer using tp. If propagator is nil, W3C trace
// context propagation is used.
func New(tp trace.TracerProvider, propagator propagation.TextMapPropagator) *Tracer {
	if tp == nil {
		panic("hydra/tracing: nil tracer provider")
	}
	if propagator == nil {
		propagator = propagation.TraceContext{}
	}
	return &Tracer{
		tracer:     tp.Tracer(ScopeName),
		propagator: propagator,
	}
}

// WithParent makes the span in ctx, if any, the parent of the spans
// recorded for r. Call it before handing r to the Hydra.
func WithParent(ctx context.Context, r *request.Request) {
	r.SetValue(parentKey{}, ctx)
}

// SpanFromRequest returns the request span recorded for r, or a no-op
// span if there is none.
func SpanFromRequest(r *request.Request) trace.Span {
	if s, ok := r.Value(requestKey{}).(trace.Span); ok {
		return s
	}
	return trace.SpanFromContext(context.Background())
}

// Install adds t to the handler chains of every event it traces.
func (t *Tracer) Install(g *hydra.HandlerGroup) {
	g.PushBack(hydra.AfterCacheHit, t)
	g.PushBack(hydra.BeforeAttempt, t)
	g.PushBack(hydra.AfterAttempt, t)
	g.PushBack(hydra.BeforeRetry, t)
	g.PushBack(hydra.AfterRequestEnd, t)
}

// Handle records one event.
func (t *Tracer) Handle(evt hydra.Event, r *request.Request, resp *request.Response) {
	switch evt {
	case hydra.AfterCacheHit:
		span := t.requestSpan(r)
		span.SetAttributes(attribute.Bool("hydra.cached", true))
	case hydra.BeforeAttempt:
		t.startAttempt(r)
	case hydra.AfterAttempt:
		t.endAttempt(r, resp)
	case hydra.BeforeRetry:
		t.requestSpan(r).AddEvent("retry", trace.WithAttributes(
			attribute.Int("hydra.attempt", r.Attempts()),
		))
	case hydra.AfterRequestEnd:
		span := t.requestSpan(r)
		span.SetAttributes(
			attribute.String("hydra.state", r.State().String()),
			attribute.Int("hydra.attempts", r.Attempts()),
		)
		end(span, resp)
	}
}

// requestSpan returns the request span for r, starting it if needed.
func (t *Tracer) requestSpan(r *request.Request) trace.Span {
	if s, ok := r.Value(requestKey{}).(trace.Span); ok {
		return s
	}
	ctx, _ := r.Value(parentKey{}).(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := t.tracer.Start(ctx, "HTTP "+r.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hydra.request.id", r.ID),
			attribute.String("http.request.method", r.Method),
			attribute.String("url.full", r.URL.String()),
		),
	)
	r.SetValue(requestKey{}, span)
	return span
}

func (t *Tracer) startAttempt(r *request.Request) {
	parent := trace.ContextWithSpan(context.Background(), t.requestSpan(r))
	ctx, span := t.tracer.Start(parent, "HTTP "+r.Method+" attempt "+strconv.Itoa(r.Attempts()),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("hydra.attempt", r.Attempts())),
	)
	r.SetValue(attemptKey{}, span)
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(r.Header))
}

func (t *Tracer) endAttempt(r *request.Request, resp *request.Response) {
	span, ok := r.Value(attemptKey{}).(trace.Span)
	if !ok {
		return
	}
	end(span, resp)
}

// end finishes a span, recording the response status or error.
func end(span trace.Span, resp *request.Response) {
	if resp == nil {
		span.End()
		return
	}
	switch {
	case resp.Err() != nil:
		span.RecordError(resp.Err())
		span.SetStatus(codes.Error, resp.Err().Error())
	case resp.StatusCode() >= 400:
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode()))
	default:
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
