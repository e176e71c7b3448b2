// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting the per-attempt timeout
// of requests which do not carry their own, including on retries.
package timeout
