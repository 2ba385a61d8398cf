// Package api provides the HTTP API layer for the krepis module registry
// daemon.
//
// This package acts as a thin wrapper around the reusable pkg/server
// package, configuring it with the platform registry routes. It exposes
// registry inspection and batch loading over REST; module installation
// and registry editing remain CLI operations.
//
// # Usage
//
// To start the API server:
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/NVIDIA/krepis/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Architecture
//
// The API layer is responsible for:
//   - Configuring structured logging with application name and version
//   - Building the platform manager and enabling the registry
//   - Setting up route handlers (platforms, modules, load)
//   - Delegating server lifecycle management to pkg/server
//
// The pkg/server package handles:
//   - HTTP server setup and graceful shutdown
//   - Middleware (rate limiting, logging, metrics, panic recovery)
//   - Health and readiness endpoints
//   - Prometheus metrics
//
// # Endpoints
//
// Application Endpoints (with rate limiting):
//   - GET  /v1/platforms      - List registered platforms and load state
//   - GET  /v1/platforms/{id} - Get one loaded platform instance
//   - GET  /v1/modules        - List installed module manifests
//   - POST /v1/load           - Batch-load platforms (settle-all)
//
// System Endpoints (no rate limiting):
//   - GET /health  - Health check (liveness probe, alias /healthz)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Request Body (POST /v1/load)
//
// POST requests accept the platform ids to load. Supports both JSON
// (application/json) and YAML (application/x-yaml) formats.
//
// Example request body:
//
//	{"platforms": ["web", "android"]}
//
// Example curl command:
//
//	curl -X POST http://localhost:8080/v1/load \
//	  -H "Content-Type: application/json" \
//	  -d '{"platforms": ["web", "android"]}'
//
// Every requested id gets a result entry whether it loaded or failed; a
// single bad id never aborts the batch. Per-id failures are reported in
// the errors field of the response.
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - KREPIS_CONFIG: Platform configuration source (file, URL, or cm:// URI)
//   - KREPIS_MODULES_DIR: Module installation directory
//   - KREPIS_KUBECONFIG: Kubeconfig for cm:// sources
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/krepis/pkg/api.version=1.0.0'"
package api
