// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package testserver provides an echo HTTP server for tests of the
// transport and dispatcher packages.
//
// Every response body is a JSON document describing the request the
// server received:
//
//	{"method": "GET", "url": "/p?q=hi", "path": "/p", "query": "q=hi",
//	 "headers": {"Foo": ["bar"]}, "body": "...", "body_len": 0}
//
// The request path selects the behavior:
//
//	/status/{code}   respond with the given status code
//	/sleep/{dur}     sleep for the given time.ParseDuration string first
//	/flaky/{n}       respond 503 to the first n requests, then 200
//	anything else    respond 200
package testserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// A Server is a running echo server.
type Server struct {
	*httptest.Server
	hits  int64
	flaky int64
}

// Echo is the JSON document written back for every request.
type Echo struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Path    string      `json:"path"`
	Query   string      `json:"query"`
	Headers http.Header `json:"headers"`
	Body    string      `json:"body"`
	BodyLen int         `json:"body_len"`
}

// New starts a new echo server. Call Close when done.
func New() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Hits returns the number of requests served so far.
func (s *Server) Hits() int {
	return int(atomic.LoadInt64(&s.hits))
}

func (s *Server) serve(w http.ResponseWriter, req *http.Request) {
	atomic.AddInt64(&s.hits, 1)
	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if len(parts) == 2 {
		switch parts[0] {
		case "status":
			if code, err := strconv.Atoi(parts[1]); err == nil {
				status = code
			}
		case "sleep":
			if d, err := time.ParseDuration(parts[1]); err == nil {
				select {
				case <-time.After(d):
				case <-req.Context().Done():
					return
				}
			}
		case "flaky":
			if n, err := strconv.ParseInt(parts[1], 10, 64); err == nil && atomic.AddInt64(&s.flaky, 1) <= n {
				status = http.StatusServiceUnavailable
			}
		}
	}

	out, err := json.Marshal(Echo{
		Method:  req.Method,
		URL:     req.URL.RequestURI(),
		Path:    req.URL.Path,
		Query:   req.URL.RawQuery,
		Headers: req.Header,
		Body:    string(b),
		BodyLen: len(b),
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
