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

package header

import (
	"time"
)

// APIVersion is the current schema version stamped on krepis resources.
const APIVersion = "v1"

// Header carries kind, schema version, and metadata for serialized krepis
// resources, following Kubernetes resource conventions. Resource types
// embed it inline.
type Header struct {
	// Kind identifies the resource type.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the resource.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata holds free-form key-value pairs such as timestamp and the
	// producing tool's version.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Kind names a krepis resource type.
type Kind string

// Resource kinds serialized by krepis.
const (
	KindPlatformConfig Kind = "PlatformConfig"
	KindLoadReport     Kind = "LoadReport"
	KindModuleList     Kind = "ModuleList"
)

// String returns the kind as a plain string.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the recognized resource kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindPlatformConfig, KindLoadReport, KindModuleList:
		return true
	default:
		return false
	}
}

// Option configures a Header built with New.
type Option func(*Header)

// WithKind sets the resource kind.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion sets the schema version.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// WithMetadata adds one metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// New builds a Header from options. The metadata map is always usable.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init stamps the header in place with the given kind and schema version,
// a fresh UTC timestamp, and the producing tool's version when known.
// Existing metadata is replaced.
func (h *Header) Init(kind Kind, apiVersion string, version string) {
	h.Kind = kind
	h.APIVersion = apiVersion
	h.Metadata = map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if version != "" {
		h.Metadata["version"] = version
	}
}

// GetKind returns the resource kind.
func (h *Header) GetKind() Kind {
	return h.Kind
}

// GetMetadata returns the metadata map.
func (h *Header) GetMetadata() map[string]string {
	return h.Metadata
}
