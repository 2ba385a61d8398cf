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

package config

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/krepis/pkg/acquirer"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/modules"
)

// Platform maps one platform id to the module that backs it and the
// source the module is installed from.
type Platform struct {
	// Module is the name of the module backing the platform.
	Module string `json:"module" yaml:"module"`

	// Source is where the module is installed from when missing
	// (oci:// reference or local directory).
	Source string `json:"source" yaml:"source"`
}

// Document is the platform configuration: the full mapping the registry
// is enabled with. JSON is the canonical on-disk form; YAML is accepted
// on read.
type Document struct {
	header.Header `yaml:",inline"`

	Platforms map[string]Platform `json:"platforms" yaml:"platforms"`
}

// NewDocument returns an empty document ready for entries.
func NewDocument() *Document {
	return &Document{Platforms: make(map[string]Platform)}
}

// ParseDocument reads a platform configuration document. yaml.v3 handles
// both the canonical JSON form and YAML.
func ParseDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if doc.Platforms == nil {
		doc.Platforms = make(map[string]Platform)
	}

	return &doc, nil
}

// IDs returns the configured platform ids, sorted.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Platforms))
	for id := range d.Platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Header:    d.Header,
		Platforms: make(map[string]Platform, len(d.Platforms)),
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	for id, p := range d.Platforms {
		out.Platforms[id] = p
	}
	return out
}

// Validate checks every entry: platform ids and module names share the
// module identifier grammar, and sources must parse as an OCI reference
// or local path.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "platform configuration is required")
	}

	for id, p := range d.Platforms {
		if !modules.IsValidName(id) {
			return errors.NewWithContext(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid platform id %q", id),
				map[string]any{"platform": id})
		}
		if !modules.IsValidName(p.Module) {
			return errors.NewWithContext(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("platform %s has invalid module name %q", id, p.Module),
				map[string]any{"platform": id, "module": p.Module})
		}
		if _, err := acquirer.ParseSource(p.Source); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("platform %s has invalid source %q", id, p.Source), err,
				map[string]any{"platform": id, "source": p.Source})
		}
	}

	return nil
}
