// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogama/hydra/request"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("hydra/cache: cbor encoding mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 10000,
		MaxMapPairs:      10000,
		MaxNestedLevels:  16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("hydra/cache: cbor decoding mode: %v", err))
	}
}

type snapshot struct {
	StatusCode int                 `cbor:"1,keyasint"`
	Header     map[string][]string `cbor:"2,keyasint,omitempty"`
	Body       []byte              `cbor:"3,keyasint,omitempty"`
	Elapsed    int64               `cbor:"4,keyasint"`
}

// Marshal encodes the status, headers, body and elapsed time of resp as
// CBOR, for caches which store responses outside the process. A
// transport error is not encoded, since only successful responses are
// cached.
func Marshal(resp *request.Response) ([]byte, error) {
	b, err := encMode.Marshal(snapshot{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Elapsed:    int64(resp.Elapsed()),
	})
	if err != nil {
		return nil, fmt.Errorf("hydra/cache: cbor marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a response encoded by Marshal.
func Unmarshal(data []byte) (*request.Response, error) {
	var s snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("hydra/cache: cbor unmarshal: %w", err)
	}
	var h http.Header
	if s.Header != nil {
		h = http.Header(s.Header)
	}
	return request.NewResponse(s.StatusCode, h, s.Body, time.Duration(s.Elapsed)), nil
}
