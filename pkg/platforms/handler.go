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

package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/registry"
	"github.com/NVIDIA/krepis/pkg/serializer"
	"github.com/NVIDIA/krepis/pkg/server"
	"gopkg.in/yaml.v3"
)

// LoadRequest is the request body accepted by HandleLoad.
type LoadRequest struct {
	// Platforms are the platform ids to load. Duplicates are allowed and
	// share one task per distinct module.
	Platforms []string `json:"platforms" yaml:"platforms"`
}

// HandlePlatforms serves GET requests listing every registered platform
// with its backing module and load state.
func (m *Manager) HandlePlatforms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{"GET"},
			})
		return
	}

	entries, err := m.Entries()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to list platforms", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, struct {
		Platforms []registry.Entry `json:"platforms"`
		Count     int              `json:"count"`
	}{entries, len(entries)})
}

// HandlePlatform serves GET requests for a single loaded platform by id.
// Registered ids that have not been loaded yet return 404 with code
// NOT_LOADED.
func (m *Manager) HandlePlatform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{"GET"},
			})
		return
	}

	id := r.PathValue("id")
	if id == "" {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Platform id is required", false, nil)
		return
	}

	instance, err := m.GetPlatform(id)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to get platform", map[string]any{
			"platform": id,
		})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, instance)
}

// HandleLoad processes batch load requests. The body names platform ids
// to load; every id gets a result entry whether it loaded or failed, so a
// single bad id never aborts the batch. The response is always 200 when
// the batch ran; per-id failures are reported in the errors field.
func (m *Manager) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{"POST"},
			})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.BatchLoadTimeout)
	defer cancel()

	req, err := parseLoadRequest(r.Body, r.Header.Get("Content-Type"))
	defer func() {
		if r.Body != nil {
			r.Body.Close()
		}
	}()
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Invalid load request", false, map[string]any{
				"error": err.Error(),
			})
		return
	}

	if len(req.Platforms) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"At least one platform id is required", false, nil)
		return
	}
	if len(req.Platforms) > defaults.MaxLoadBatchSize {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Too many platform ids in one request", false, map[string]any{
				"count": len(req.Platforms),
				"limit": defaults.MaxLoadBatchSize,
			})
		return
	}

	slog.Debug("load request", "platforms", req.Platforms)

	out, err := m.LoadPlatformsDetailed(ctx, req.Platforms)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to load platforms", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, out)
}

// HandleModules serves GET requests listing the manifests of every
// installed module.
func (m *Manager) HandleModules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{"GET"},
			})
		return
	}

	manifests, err := m.ListModules()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to list modules", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, modules.NewList(manifests))
}

// parseLoadRequest decodes a load request body as JSON or YAML based on
// the Content-Type header. Unrecognized content types fall back to JSON.
func parseLoadRequest(body io.Reader, contentType string) (*LoadRequest, error) {
	if body == nil {
		return nil, fmt.Errorf("request body cannot be nil")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	var req LoadRequest
	switch ct {
	case "application/x-yaml", "application/yaml", "text/yaml":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to parse YAML body: %w", err)
		}
	case "application/json", "":
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to parse JSON body: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("unsupported content type %q and failed to parse as JSON: %w", contentType, err)
		}
	}

	return &req, nil
}
