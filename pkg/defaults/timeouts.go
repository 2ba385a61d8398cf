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

package defaults

import "time"

// Loader timeouts for module resolution and batch loading.
const (
	// ResolveTimeout is the default timeout for a single module resolution,
	// excluding acquisition. Resolvers should respect shorter parent deadlines.
	ResolveTimeout = 10 * time.Second

	// BatchLoadTimeout is the default timeout for a whole batch load,
	// including any module installs the batch triggers.
	BatchLoadTimeout = 5 * time.Minute
)

// Acquirer timeouts and limits for module installation.
const (
	// InstallTimeout is the timeout for installing a single module
	// (registry pull or local copy).
	InstallTimeout = 2 * time.Minute

	// InstallConcurrency caps the number of installs a flush runs at once.
	InstallConcurrency = 4
)

// Request limits for the daemon API.
const (
	// MaxLoadBatchSize caps the number of platform ids a single load
	// request may name.
	MaxLoadBatchSize = 100
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	// Writes go through server-side apply and can queue behind the
	// client-side rate limiter, so this is longer than the read timeout.
	ConfigMapWriteTimeout = 30 * time.Second

	// ConfigMapReadTimeout is the timeout for reading a ConfigMap.
	ConfigMapReadTimeout = 15 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLILoadTimeout is the default timeout for load operations.
	CLILoadTimeout = 5 * time.Minute
)
