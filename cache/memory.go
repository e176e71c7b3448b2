// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/gogama/hydra/request"
)

// Memory is an in-process Cache. Its zero value is an empty, unbounded
// cache ready to use.
//
// Expired entries are evicted lazily when looked up, when the cache is
// full, and by Sweep.
type Memory struct {
	// MaxEntries bounds the number of entries. When a new key is set on
	// a full cache, expired entries are swept first, then the entry
	// closest to expiry is evicted. Zero means unbounded.
	MaxEntries int

	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	resp    *request.Response
	expires time.Time
}

// NewMemory returns an empty Memory cache holding at most maxEntries
// entries, or any number if maxEntries is zero.
func NewMemory(maxEntries int) *Memory {
	return &Memory{MaxEntries: maxEntries}
}

// Get returns a copy of the response stored under key, or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) (*request.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.clock().Before(e.expires) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	return e.resp.Clone(), nil
}

// Set stores a copy of resp under key until lifetime has passed. Later
// changes to resp do not reach the cache.
func (m *Memory) Set(_ context.Context, key string, resp *request.Response, lifetime time.Duration) error {
	if lifetime <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	if m.entries == nil {
		m.entries = make(map[string]entry)
	}
	if _, ok := m.entries[key]; !ok && m.MaxEntries > 0 && len(m.entries) >= m.MaxEntries {
		m.sweep(now)
		if len(m.entries) >= m.MaxEntries {
			m.evictSoonest()
		}
	}
	m.entries[key] = entry{resp: resp.Clone(), expires: now.Add(lifetime)}
	return nil
}

// Delete removes the entry stored under key, if any.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len returns the number of entries, including expired entries not yet
// evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep evicts all expired entries and returns how many were evicted.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweep(m.clock())
}

// StartSweeper runs Sweep every interval on a new goroutine until ctx
// is done.
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		panic("hydra/cache: sweep interval must be positive")
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

func (m *Memory) sweep(now time.Time) int {
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *Memory) evictSoonest() {
	var victim string
	var soonest time.Time
	first := true
	for k, e := range m.entries {
		if first || e.expires.Before(soonest) {
			victim, soonest, first = k, e.expires, false
		}
	}
	if !first {
		delete(m.entries, victim)
	}
}

func (m *Memory) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}
