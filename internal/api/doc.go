// Package api hosts the HTTP server, middleware wiring and REST handlers for
// on-demand extraction. Notable routes:
//   - GET /healthz and /readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/weekends/{id} and /v1/years/{year} for ranked batches.
//   - GET /v1/titles?url= for a single release page.
package api
