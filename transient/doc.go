// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors as transient or
// non-transient. The retry deciders use it to tell a refused connection
// or a temporary DNS failure, which may clear up on a later attempt,
// from an error that will not.
//
// Package transient depends only on the standard library, so request
// and retry can both import it without a cycle.
package transient
