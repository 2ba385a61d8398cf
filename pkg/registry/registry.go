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

package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/platform"
)

// Entry is one registered platform: its id, the module backing it, the
// module's install source, and the instance once a load completed.
type Entry struct {
	// ID is the platform identifier.
	ID string `json:"id" yaml:"id"`

	// Module is the name of the module backing the platform.
	Module string `json:"module" yaml:"module"`

	// Source is where the module installs from when missing.
	Source string `json:"source" yaml:"source"`

	// Instance is the loaded platform instance, nil until a load
	// completes.
	Instance *platform.Instance `json:"instance,omitempty" yaml:"instance,omitempty"`
}

// Loaded reports whether the entry has a loaded instance.
func (e Entry) Loaded() bool {
	return e.Instance != nil
}

// Registry is the in-memory platform id → entry mapping. At most one
// mapping is active at a time: Enable replaces it wholesale, never merges.
// Reads before the first Enable fail with ErrCodeNotEnabled.
//
// All methods are safe for concurrent use. Mutation happens in exactly two
// places, Enable and Attach, each a single critical section, so readers
// never observe a partially updated mapping.
type Registry struct {
	mu      sync.RWMutex
	enabled bool
	entries map[string]*Entry
}

// New creates an empty, not yet enabled registry.
func New() *Registry {
	return &Registry{}
}

// Enable validates the configuration document and replaces the registry
// state with its mapping. Instances attached under a previous mapping are
// dropped with it.
func (r *Registry) Enable(doc *config.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "platform configuration is required")
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	entries := make(map[string]*Entry, len(doc.Platforms))
	for id, p := range doc.Platforms {
		entries[id] = &Entry{
			ID:     id,
			Module: p.Module,
			Source: p.Source,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = entries
	r.enabled = true

	slog.Debug("platform registry enabled", "platforms", len(entries))
	return nil
}

// Enabled reports whether the registry has been enabled.
func (r *Registry) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Get returns the loaded instance for a platform id.
func (r *Registry) Get(id string) (*platform.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, errNotEnabled()
	}

	e, ok := r.entries[id]
	if !ok {
		return nil, errNotRegistered(id)
	}
	if e.Instance == nil {
		return nil, errors.NewWithContext(errors.ErrCodeNotLoaded,
			fmt.Sprintf("platform %s has not been loaded", id),
			map[string]any{"platform": id, "module": e.Module})
	}

	return e.Instance, nil
}

// All returns the loaded instance of every registered entry that has one,
// in sorted id order. Unloaded entries are silently omitted; callers that
// need the full key set regardless of load state use IDs. Ids backed by
// the same module share one instance, which then appears once per id.
func (r *Registry) All() ([]*platform.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, errNotEnabled()
	}

	out := make([]*platform.Instance, 0, len(r.entries))
	for _, id := range r.sortedIDs() {
		if e := r.entries[id]; e.Instance != nil {
			out = append(out, e.Instance)
		}
	}
	return out, nil
}

// IDs returns every registered platform id, sorted, regardless of load
// state.
func (r *Registry) IDs() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, errNotEnabled()
	}
	return r.sortedIDs(), nil
}

// Entry returns a snapshot of one entry. The instance pointer is shared;
// everything else is a copy.
func (r *Registry) Entry(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return Entry{}, errNotEnabled()
	}

	e, ok := r.entries[id]
	if !ok {
		return Entry{}, errNotRegistered(id)
	}
	return *e, nil
}

// Entries returns a snapshot of every entry in sorted id order.
func (r *Registry) Entries() ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, errNotEnabled()
	}

	out := make([]Entry, 0, len(r.entries))
	for _, id := range r.sortedIDs() {
		out = append(out, *r.entries[id])
	}
	return out, nil
}

// Attach binds loaded instances to their entries in one critical section.
// This is the batch-completion mutation: ids that were dropped or remapped
// to a different module by a concurrent Enable are skipped, never errors.
func (r *Registry) Attach(instances map[string]*platform.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return errNotEnabled()
	}

	for id, inst := range instances {
		if inst == nil {
			continue
		}
		e, ok := r.entries[id]
		if !ok {
			slog.Debug("skipping attach, platform no longer registered", "platform", id)
			continue
		}
		if e.Module != inst.Module {
			slog.Debug("skipping attach, platform remapped since load began",
				"platform", id,
				"loaded_module", inst.Module,
				"registered_module", e.Module,
			)
			continue
		}
		e.Instance = inst
	}

	return nil
}

// sortedIDs assumes the caller holds at least a read lock.
func (r *Registry) sortedIDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func errNotEnabled() error {
	return errors.New(errors.ErrCodeNotEnabled, "platform registry has not been enabled")
}

func errNotRegistered(id string) error {
	return errors.NewWithContext(errors.ErrCodeNotRegistered,
		fmt.Sprintf("platform %s is not registered", id),
		map[string]any{"platform": id})
}
