// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache defines the response Cache consulted by the dispatcher
// before dispatching a request with a positive CacheTimeout, and
// populated after such a request succeeds.
//
// Memory is the in-process implementation. Package cache/redis provides
// a shared implementation whose entries are encoded with Marshal.
package cache
