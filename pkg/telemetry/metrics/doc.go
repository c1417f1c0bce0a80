// Package metrics exposes Prometheus metrics for the dispatch path:
// request outcomes, per-attempt outcomes, selector decisions and request
// latency.
package metrics
