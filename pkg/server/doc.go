// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server provides the HTTP server used by the krepis module
// registry daemon. It is handler-agnostic: routes are injected through
// options and wrapped with a standard middleware chain.
//
// # Architecture
//
// The server owns everything about serving HTTP except the handlers
// themselves:
//
//   - token-bucket rate limiting (golang.org/x/time/rate)
//   - request id assignment and propagation
//   - API version negotiation from the Accept header
//   - RED metrics and a /metrics exposition endpoint (prometheus)
//   - panic recovery
//   - graceful shutdown on context cancellation
//   - liveness and readiness probes
//
// # Usage
//
// Basic server startup:
//
//	package main
//
//	import (
//	    "context"
//	    "net/http"
//
//	    "github.com/NVIDIA/krepis/pkg/server"
//	)
//
//	func main() {
//	    routes := map[string]http.HandlerFunc{
//	        "/v1/platforms": handlePlatforms,
//	    }
//
//	    s := server.New(
//	        server.WithName("krepisd"),
//	        server.WithVersion("1.0.0"),
//	        server.WithHandler(routes),
//	    )
//
//	    if err := s.Run(context.Background()); err != nil {
//	        panic(err)
//	    }
//	}
//
// Custom configuration:
//
//	cfg := server.NewConfig()
//	cfg.Port = 9090
//	cfg.RateLimit = 200  // 200 requests/sec
//	cfg.RateLimitBurst = 400
//
//	s := server.New(server.WithConfig(cfg))
//
// # System Endpoints
//
// GET /health (alias /healthz) - Health check (for liveness probe)
//
//	Always returns 200 OK with {"status": "healthy", "timestamp": "..."}
//
// GET /ready - Readiness check (for readiness probe)
//
//	Returns 200 OK when ready, 503 when not ready
//
// GET /metrics - Prometheus exposition endpoint
//
// GET / - Server identity and registered routes (unless a custom root
// handler is registered)
//
// System endpoints bypass the middleware chain so probes are never rate
// limited; configured handlers get the full chain.
//
// # Observability
//
// Every request gets a request id: an X-Request-Id header is honored when
// it parses as a UUID and replaced otherwise, so log correlation never
// depends on client behavior. The id rides the request context
// (RequestIDFrom), comes back in the X-Request-Id response header, and is
// embedded in every error body.
//
// The rate limiter reports its state on each response through
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset, and a
// rejected request gets a 429 with Retry-After.
//
// Clients pin an API version with a vendor MIME type in Accept
// (application/vnd.nvidia.krepis.v1+json); the negotiated version is
// echoed in X-API-Version and available to handlers via APIVersionFrom.
//
// Exported metrics:
//
//	krepis_http_requests_total{method,path,status}
//	krepis_http_request_duration_seconds{method,path}
//	krepis_http_requests_in_flight
//	krepis_rate_limit_rejects_total
//	krepis_panic_recoveries_total
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "NOT_REGISTERED",
//	  "message": "platform \"mod-vulcan\" is not registered",
//	  "details": {"platform": "mod-vulcan"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": false
//	}
//
// Handlers produce these with WriteError, or WriteErrorFromErr when
// mapping a structured error from pkg/errors; the HTTP status follows
// from the error code (see HTTPStatusFromCode).
//
// # Deployment
//
// The probe endpoints line up with Kubernetes pod probes; a deployment
// needs nothing beyond the PORT env var and the two probe paths:
//
//	env:
//	- name: PORT
//	  value: "8080"
//	livenessProbe:
//	  httpGet:
//	    path: /health
//	    port: 8080
//	readinessProbe:
//	  httpGet:
//	    path: /ready
//	    port: 8080
//
// # References
//
//   - Rate limiting: https://pkg.go.dev/golang.org/x/time/rate
//   - Error format: https://datatracker.ietf.org/doc/html/rfc7807
//   - Kubernetes probes: https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/
package server
