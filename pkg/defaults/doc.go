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

// Package defaults provides centralized configuration constants for krepis.
//
// This package defines timeout values, concurrency limits, and other
// configuration defaults used across the codebase. Centralizing these values
// ensures consistency and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Loader timeouts: For module resolution and batch loading
//   - Acquirer timeouts: For module installation
//   - Server timeouts: For HTTP server configuration
//   - HTTP client timeouts: For outbound HTTP requests
//   - ConfigMap timeouts: For Kubernetes ConfigMap operations
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/krepis/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.InstallTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Resolution: 10s default, respects parent context deadline
//   - Installs: 2m per module, bounded by InstallConcurrency per flush
//   - Batch loads: 5m total including any triggered installs
//   - Server shutdown: 30s for graceful shutdown
package defaults
