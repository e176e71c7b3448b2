// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/gogama/hydra"
	"github.com/gogama/hydra/request"
)

// Collector records per-request statistics in a thread-safe manner.
// Latency is measured from a request's first dispatch to its end, so
// it includes retry backoff. Cache hits count as zero latency.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	cacheHits  int64
	retries    int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	errors     map[string]int64
}

// Stats represents aggregated statistics.
type Stats struct {
	Total          int64
	Successes      int64
	Failures       int64
	CacheHits      int64
	Retries        int64
	MinLatency     time.Duration
	MaxLatency     time.Duration
	MeanLatency    time.Duration
	P50Latency     time.Duration
	P90Latency     time.Duration
	P99Latency     time.Duration
	Duration       time.Duration
	RequestsPerSec float64
	// Errors counts failures by kind: "status NNN" for HTTP error
	// statuses, or the attempt outcome label used by Prometheus for
	// transport errors.
	Errors map[string]int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:   h,
		errors: make(map[string]int64),
	}
}

// Install adds c to the handler chains of every event it measures.
func (c *Collector) Install(g *hydra.HandlerGroup) {
	g.PushBack(hydra.AfterCacheHit, c)
	g.PushBack(hydra.BeforeRetry, c)
	g.PushBack(hydra.AfterRequestEnd, c)
}

// Handle records one event.
func (c *Collector) Handle(evt hydra.Event, r *request.Request, resp *request.Response) {
	switch evt {
	case hydra.AfterCacheHit:
		c.mu.Lock()
		c.cacheHits++
		c.mu.Unlock()
	case hydra.BeforeRetry:
		c.mu.Lock()
		c.retries++
		c.mu.Unlock()
	case hydra.AfterRequestEnd:
		var latency time.Duration
		if start := r.Start(); !start.IsZero() {
			latency = time.Since(start)
		}
		c.Record(latency, resp)
	}
}

// Record records a single request's latency and final response.
func (c *Collector) Record(latency time.Duration, resp *request.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.successes+c.failures == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	switch {
	case resp.OK():
		c.successes++
	case resp.Err() != nil:
		c.failures++
		c.errors[errorLabel(resp.Err())]++
	default:
		c.failures++
		c.errors["status "+strconv.Itoa(resp.StatusCode())]++
	}
}

// Stats computes and returns current aggregated statistics. The
// elapsed time is used to compute the request rate.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		CacheHits:  c.cacheHits,
		Retries:    c.retries,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
		Duration:   elapsed,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.errors) > 0 {
		stats.Errors = make(map[string]int, len(c.errors))
		for k, v := range c.errors {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}
