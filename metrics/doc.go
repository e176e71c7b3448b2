// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics provides event handler sets which measure the requests
a hydra.Hydra processes.

Prometheus exports counters, a gauge and a latency histogram to a
Prometheus registry:

	p := metrics.NewPrometheus(prometheus.DefaultRegisterer, "myapp")
	handlers := &hydra.HandlerGroup{}
	p.Install(handlers)
	h := &hydra.Hydra{Handlers: handlers}

Collector keeps in-process statistics, including latency percentiles,
which can be read at any time with Stats:

	c := metrics.NewCollector()
	c.Install(handlers)
	...
	fmt.Println(c.Stats(time.Since(start)).P99Latency)
*/
package metrics
