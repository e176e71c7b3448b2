// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport defines the Handle through which the dispatcher
// performs HTTP exchanges, with implementations over any net/http-style
// client (HTTP) and over go-resty (Resty).
//
// A transport performs exactly one exchange per call. Retries, caching
// and callbacks are layered on top by package hydra.
package transport
