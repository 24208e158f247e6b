// Package server runs the operational HTTP endpoints of a long-lived
// meetpilot process.
//
// MetricsServer serves Prometheus metrics on a dedicated address, separate
// from the MCP transport, together with liveness and readiness probes:
//   - /metrics: Prometheus scrape endpoint
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, fails while shutting down or when a registered
//     dependency check fails (for example a missing Google token)
package server
