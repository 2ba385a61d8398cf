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

package modules

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/version"
)

// ManifestFileName is the file every installed module must carry at its root.
const ManifestFileName = "module.yaml"

// nameRE constrains module and platform names to filesystem- and
// reference-safe identifiers.
var nameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// IsValidName reports whether s is a legal module or platform identifier:
// lowercase alphanumerics, dots, underscores, and dashes, not starting
// with a separator.
func IsValidName(s string) bool {
	return nameRE.MatchString(s)
}

// Manifest describes an installed module. It is read from module.yaml at
// the module directory root.
type Manifest struct {
	// Name is the module identifier. It must match the directory the
	// module is installed under.
	Name string `json:"name" yaml:"name"`

	// Version is the module version. Optional, but must parse as a
	// version when present.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Kind selects the registered constructor used to build providers
	// from this module.
	Kind string `json:"kind" yaml:"kind"`

	// Description is a short human-readable summary.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Settings carries kind-specific configuration passed through to the
	// constructor.
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// ParseManifest decodes a manifest from r and validates it.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest name is required")
	}
	if !IsValidName(m.Name) {
		return fmt.Errorf("invalid manifest name: %q", m.Name)
	}
	if m.Kind == "" {
		return fmt.Errorf("manifest kind is required")
	}
	if m.Version != "" {
		if _, err := version.Parse(m.Version); err != nil {
			return fmt.Errorf("invalid manifest version %q: %w", m.Version, err)
		}
	}
	return nil
}

// Setting returns the named setting value, or the fallback when absent.
func (m *Manifest) Setting(key, fallback string) string {
	if v, ok := m.Settings[key]; ok {
		return v
	}
	return fallback
}

// List is the module inventory document emitted by module listings, both
// on the CLI and from the daemon API.
type List struct {
	header.Header `yaml:",inline"`

	// Modules are the installed module manifests, in store order.
	Modules []*Manifest `json:"modules" yaml:"modules"`

	// Count is the number of installed modules.
	Count int `json:"count" yaml:"count"`
}

// NewList assembles a stamped inventory document from installed manifests.
func NewList(manifests []*Manifest) *List {
	l := &List{Modules: manifests, Count: len(manifests)}
	l.Init(header.KindModuleList, header.APIVersion, "")
	return l
}
