// Package api hosts the HTTP server, middleware, and REST handlers. Routes:
//   - POST /scrape/ (and /scrape) runs a scrape; bearer token required.
//   - GET /products returns the stored document; bearer token required.
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
package api
