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

package generic

import (
	"fmt"
	"sort"

	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/platform"
)

// Kind is the kind name this package registers.
const Kind = "generic"

func init() {
	modules.MustRegisterKind(Kind, New)
}

// New binds a manifest to a constructor for generic providers.
func New(m *modules.Manifest) platform.Constructor {
	return func(module string, platformIDs []string) (platform.Provider, error) {
		if module == "" {
			return nil, fmt.Errorf("module name is required")
		}
		if len(platformIDs) == 0 {
			return nil, fmt.Errorf("at least one platform id is required")
		}

		ids := make([]string, len(platformIDs))
		copy(ids, platformIDs)
		sort.Strings(ids)

		return &Provider{
			module:   module,
			ids:      ids,
			manifest: m,
		}, nil
	}
}

// Provider is the generic platform provider: it exposes the module's
// manifest data to callers without any behavior of its own.
type Provider struct {
	module   string
	ids      []string
	manifest *modules.Manifest
}

// Module implements platform.Provider.
func (p *Provider) Module() string {
	return p.module
}

// Platforms implements platform.Provider.
func (p *Provider) Platforms() []string {
	ids := make([]string, len(p.ids))
	copy(ids, p.ids)
	return ids
}

// Manifest returns the manifest the provider was constructed from.
func (p *Provider) Manifest() *modules.Manifest {
	return p.manifest
}

// Describe returns a one-line summary for listings.
func (p *Provider) Describe() string {
	if p.manifest != nil && p.manifest.Description != "" {
		return p.manifest.Description
	}
	return fmt.Sprintf("generic provider for %s", p.module)
}
