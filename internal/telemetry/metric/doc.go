// Package metric provides Prometheus metrics for gamesvc.
//
// Metrics include:
//
//   - Operation counts by subsystem, operation and outcome
//   - Operation latency histograms
//   - Pending completion gauges and replaced-completion counters
//   - Conflict resolutions by strategy and decision source
//   - Dispatcher queue depth and callback panics
//
// Metrics are exposed at /metrics through Metrics.Handler.
package metric
