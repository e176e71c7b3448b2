// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hydra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Len(t, Events(), numEvents)
	events := Events()
	assert.Equal(t, AfterEnqueue, events[AfterEnqueue])
	assert.Equal(t, AfterCacheHit, events[AfterCacheHit])
	assert.Equal(t, BeforeAttempt, events[BeforeAttempt])
	assert.Equal(t, AfterAttempt, events[AfterAttempt])
	assert.Equal(t, BeforeRetry, events[BeforeRetry])
	assert.Equal(t, AfterRequestEnd, events[AfterRequestEnd])
}

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "AfterEnqueue", AfterEnqueue.Name())
	assert.Equal(t, "AfterCacheHit", AfterCacheHit.Name())
	assert.Equal(t, "BeforeAttempt", BeforeAttempt.Name())
	assert.Equal(t, "AfterAttempt", AfterAttempt.Name())
	assert.Equal(t, "BeforeRetry", BeforeRetry.Name())
	assert.Equal(t, "AfterRequestEnd", AfterRequestEnd.Name())
	assert.Equal(t, "BeforeRetry", BeforeRetry.String())
}
