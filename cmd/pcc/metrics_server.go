package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveMetrics starts a background HTTP server exposing /metrics via
// promhttp, if addr is non-empty. It does not block: break and repair
// are long enough on large blobs to make a point-in-time scrape useful
// while they run.
func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
}
