// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Request (describes one logical
HTTP call and tracks its lifecycle) and Response (the outcome of a
finished attempt).

Create a request with New and functional options:

	r, err := request.New("http://localhost:3000",
		request.Param("q", "hi"),
		request.Header("Foo", "bar"),
		request.MaxRetries(2))
	...

Query parameters are merged into the URL at construction time. The
body is buffered up front, so a request can be retried without the
caller supplying the body again.

Attach completion handlers to consume the response when the request
finishes:

	r.OnComplete(request.HandlerFunc(func(resp *request.Response) (interface{}, error) {
		return resp.StatusCode(), nil
	}))
	r.AfterComplete(request.AfterHandlerFunc(func(handled interface{}) error {
		fmt.Println("status", handled)
		return nil
	}))

A Request moves through the states Pending, InFlight, Retrying,
Completed and Failed. The dispatcher in package hydra drives the
transitions; the transition methods are exported so a Request can also
be driven by hand, for example in tests of completion handlers.
*/
package request
