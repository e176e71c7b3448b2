// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogama/hydra"
	"github.com/gogama/hydra/request"
	"github.com/gogama/hydra/transient"
)

// Prometheus holds the Prometheus metrics updated by its event
// handlers.
type Prometheus struct {
	// Attempts counts transport attempts by method and outcome. The
	// outcome is "ok", "http_error" or the transient category of the
	// transport error ("timeout", "conn_refused" and so on, or
	// "error" if uncategorized).
	Attempts *prometheus.CounterVec
	// AttemptDuration observes the duration of each attempt, in
	// seconds, by method.
	AttemptDuration *prometheus.HistogramVec
	// InFlight is the number of attempts in progress.
	InFlight prometheus.Gauge
	// Retries counts retry decisions by method.
	Retries *prometheus.CounterVec
	// CacheHits counts requests served from the cache.
	CacheHits prometheus.Counter
	// Requests counts requests which reached a terminal state, by
	// method, state and status code.
	Requests *prometheus.CounterVec
}

// NewPrometheus creates the metrics and registers them with reg. Every
// metric name starts with namespace followed by "_hydra_".
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "attempts_total",
				Help:      "Total number of transport attempts",
			},
			[]string{"method", "outcome"},
		),
		AttemptDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "attempt_duration_seconds",
				Help:      "Transport attempt duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		InFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "attempts_in_flight",
				Help:      "Number of transport attempts in progress",
			},
		),
		Retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "retries_total",
				Help:      "Total number of retries scheduled",
			},
			[]string{"method"},
		),
		CacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "cache_hits_total",
				Help:      "Total number of requests served from cache",
			},
		),
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hydra",
				Name:      "requests_total",
				Help:      "Total number of requests which reached a terminal state",
			},
			[]string{"method", "state", "status"},
		),
	}
}

// Install adds p to the handler chains of every event it measures.
func (p *Prometheus) Install(g *hydra.HandlerGroup) {
	g.PushBack(hydra.BeforeAttempt, p)
	g.PushBack(hydra.AfterAttempt, p)
	g.PushBack(hydra.BeforeRetry, p)
	g.PushBack(hydra.AfterCacheHit, p)
	g.PushBack(hydra.AfterRequestEnd, p)
}

// Handle updates the metrics for one event.
func (p *Prometheus) Handle(evt hydra.Event, r *request.Request, resp *request.Response) {
	switch evt {
	case hydra.BeforeAttempt:
		p.InFlight.Inc()
	case hydra.AfterAttempt:
		p.InFlight.Dec()
		p.Attempts.WithLabelValues(r.Method, outcome(resp)).Inc()
		p.AttemptDuration.WithLabelValues(r.Method).Observe(resp.Elapsed().Seconds())
	case hydra.BeforeRetry:
		p.Retries.WithLabelValues(r.Method).Inc()
	case hydra.AfterCacheHit:
		p.CacheHits.Inc()
	case hydra.AfterRequestEnd:
		p.Requests.WithLabelValues(r.Method, r.State().String(), strconv.Itoa(resp.StatusCode())).Inc()
	}
}

func outcome(resp *request.Response) string {
	switch {
	case resp.Err() != nil:
		return errorLabel(resp.Err())
	case resp.OK():
		return "ok"
	default:
		return "http_error"
	}
}

func errorLabel(err error) string {
	switch transient.Categorize(err) {
	case transient.Timeout:
		return "timeout"
	case transient.ConnRefused:
		return "conn_refused"
	case transient.ConnReset:
		return "conn_reset"
	case transient.DNS:
		return "dns"
	default:
		return "error"
	}
}
