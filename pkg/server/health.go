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

package server

import (
	"net/http"
	"time"

	"github.com/NVIDIA/krepis/pkg/serializer"
)

// HealthResponse is the body served by the health and readiness routes.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func writeHealth(w http.ResponseWriter, statusCode int, status, reason string) {
	serializer.RespondJSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}

// handleHealth reports liveness. The process is healthy whenever it can
// serve this route at all.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeHealth(w, http.StatusOK, "healthy", "")
}

// handleReady reports readiness. The flag flips on when Start runs and
// off during shutdown, letting load balancers drain the instance.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		writeHealth(w, http.StatusServiceUnavailable, "not_ready", "server is starting or shutting down")
		return
	}
	writeHealth(w, http.StatusOK, "ready", "")
}
