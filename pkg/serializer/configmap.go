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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/rest"

	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/k8s/client"
)

// ConfigMapURIScheme is the URI scheme prefix for Kubernetes ConfigMap
// references in the form cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// fieldManager identifies krepis to the API server for server-side apply.
const fieldManager = "krepis"

// headered is satisfied by resources carrying a header.Header. The kind
// and version feed the labels of written ConfigMaps.
type headered interface {
	GetKind() header.Kind
	GetMetadata() map[string]string
}

// ConfigMapWriter writes serialized resources to a Kubernetes ConfigMap,
// creating or updating it as needed.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a ConfigMapWriter for the given namespace and
// name. An unknown format falls back to JSON.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", "format", format)
		format = FormatJSON
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// Serialize writes the resource into the ConfigMap's data:
//
//	resource.{json|yaml|txt}  the encoded resource
//	format                    the encoding used
//	timestamp                 when the resource was produced
func (w *ConfigMapWriter) Serialize(ctx context.Context, resource any) error {
	applyCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	kube, restConfig, err := client.GetKubeClient()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	content, err := Marshal(w.format, resource)
	if err != nil {
		return fmt.Errorf("failed to serialize resource: %w", err)
	}

	kind := header.KindPlatformConfig.String()
	version := "unknown"
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if h, ok := resource.(headered); ok {
		if k := h.GetKind(); k != "" {
			kind = k.String()
		}
		meta := h.GetMetadata()
		if v := meta["version"]; v != "" {
			version = v
		}
		if ts := meta["timestamp"]; ts != "" {
			timestamp = ts
		}
	}

	slog.Info("applying configmap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format,
		"auth_method", authMethod(restConfig))

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "krepis",
			"app.kubernetes.io/component": kind,
			"app.kubernetes.io/version":   version,
		}).
		WithData(map[string]string{
			"resource." + w.format.extension(): string(content),
			"format":                           string(w.format),
			"timestamp":                        timestamp,
		})

	// Server-side apply makes create-or-update atomic. Force takes field
	// ownership when the CLI and the daemon alternate writes.
	_, err = kube.CoreV1().ConfigMaps(w.namespace).Apply(applyCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply configmap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close satisfies Closer. ConfigMapWriter holds nothing to release.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// authMethod names the authentication mechanism in the rest config for
// audit logging.
func authMethod(cfg *rest.Config) string {
	switch {
	case cfg == nil:
		return "unknown"
	case cfg.AuthProvider != nil:
		return cfg.AuthProvider.Name
	case cfg.ExecProvider != nil:
		return "exec"
	case cfg.BearerToken != "":
		return "bearer-token"
	case cfg.CertData != nil:
		return "cert"
	default:
		return "default"
	}
}

// parseConfigMapURI splits a cm://namespace/name URI into its parts.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	trimmed, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("configmap uri must start with %s", ConfigMapURIScheme)
	}

	namespace, name, ok = strings.Cut(trimmed, "/")
	namespace = strings.TrimSpace(namespace)
	name = strings.TrimSpace(name)
	if !ok || namespace == "" || name == "" {
		return "", "", fmt.Errorf("configmap uri must be %snamespace/name, got %q", ConfigMapURIScheme, uri)
	}
	return namespace, name, nil
}
