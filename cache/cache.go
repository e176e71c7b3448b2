// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gogama/hydra/request"
)

// ErrNotFound is returned by Cache.Get when there is no live entry for
// the key. Expired entries are reported as ErrNotFound.
var ErrNotFound = errors.New("hydra/cache: not found")

// A Cache stores responses with a per-entry lifetime.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Cache interface {
	// Get returns the live response stored under key, or ErrNotFound.
	// An entry whose lifetime has passed must be treated as absent.
	Get(ctx context.Context, key string) (*request.Response, error)

	// Set stores resp under key for the given lifetime, replacing any
	// previous entry. A lifetime of zero or less is a no-op.
	Set(ctx context.Context, key string, resp *request.Response, lifetime time.Duration) error
}

// Key returns the cache key of r: its method, full URL (query included)
// and the hex SHA-256 of its body, separated by spaces.
func Key(r *request.Request) string {
	sum := sha256.Sum256(r.Body)
	return r.Method + " " + r.URL.String() + " " + hex.EncodeToString(sum[:])
}
