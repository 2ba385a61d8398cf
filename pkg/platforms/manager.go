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
	"fmt"
	"log/slog"

	"github.com/NVIDIA/krepis/pkg/acquirer"
	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/loader"
	"github.com/NVIDIA/krepis/pkg/loader/result"
	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/platform"
	"github.com/NVIDIA/krepis/pkg/registry"
)

// Manager is the facade over the registry, module store, resolver,
// acquirer and loader. One Manager owns one registry; there is no ambient
// process-wide state.
type Manager struct {
	registry    *registry.Registry
	store       *modules.Store
	resolver    modules.Resolver
	acquirer    acquirer.Acquirer
	loader      *loader.Loader
	configStore *config.Store

	modulesDir    string
	configPath    string
	installerOpts []acquirer.InstallerOption
}

// Option configures a Manager.
type Option func(*Manager)

// WithModulesDir overrides where modules are installed
// (default ~/.krepis/modules).
func WithModulesDir(dir string) Option {
	return func(m *Manager) {
		m.modulesDir = dir
	}
}

// WithStore supplies a prebuilt module store, taking precedence over
// WithModulesDir.
func WithStore(store *modules.Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithResolver overrides the module resolver (tests use this).
func WithResolver(res modules.Resolver) Option {
	return func(m *Manager) {
		m.resolver = res
	}
}

// WithAcquirer overrides the package acquirer (tests use this).
func WithAcquirer(acq acquirer.Acquirer) Option {
	return func(m *Manager) {
		m.acquirer = acq
	}
}

// WithConfigPath overrides the platform configuration file location
// (default ~/.krepis/platforms.json).
func WithConfigPath(path string) Option {
	return func(m *Manager) {
		m.configPath = path
	}
}

// WithInstallerOptions passes options through to the default installer.
// Ignored when WithAcquirer supplies one.
func WithInstallerOptions(opts ...acquirer.InstallerOption) Option {
	return func(m *Manager) {
		m.installerOpts = opts
	}
}

// New wires a Manager from its options, supplying defaults for anything
// not provided.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		dir := m.modulesDir
		if dir == "" {
			root, err := modules.DefaultRoot()
			if err != nil {
				return nil, err
			}
			dir = root
		}
		store, err := modules.NewStore(dir)
		if err != nil {
			return nil, err
		}
		m.store = store
	}

	if m.resolver == nil {
		m.resolver = modules.NewStoreResolver(m.store)
	}

	if m.acquirer == nil {
		installer, err := acquirer.NewInstaller(m.store, m.installerOpts...)
		if err != nil {
			return nil, err
		}
		m.acquirer = installer
	}

	if m.configStore == nil {
		path := m.configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		m.configStore = config.NewStore(path)
	}

	m.registry = registry.New()

	ld, err := loader.New(m.registry, m.resolver, m.acquirer)
	if err != nil {
		return nil, err
	}
	m.loader = ld

	return m, nil
}

// EnablePlatforms replaces the registry mapping with the given document.
// A nil document loads the default configuration resource: the local
// configuration file when present, the built-in document otherwise.
// Failure to read or parse that resource is ErrCodeConfigMissing.
func (m *Manager) EnablePlatforms(ctx context.Context, doc *config.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if doc == nil {
		var err error
		doc, err = m.configStore.LoadOrDefault()
		if err != nil {
			return err
		}
		slog.Debug("enabling platforms from default configuration",
			"path", m.configStore.Path(),
			"platforms", len(doc.Platforms),
		)
	}

	return m.registry.Enable(doc)
}

// LoadPlatforms loads the given platform ids and returns the distinct
// instances, one per backing module. Per-task failures are joined into
// the returned error; successes are still attached to the registry.
func (m *Manager) LoadPlatforms(ctx context.Context, ids ...string) ([]*platform.Instance, error) {
	return m.loader.Load(ctx, ids...)
}

// LoadPlatformsDetailed is LoadPlatforms with per-task status reporting.
func (m *Manager) LoadPlatformsDetailed(ctx context.Context, ids []string) (*result.Output, error) {
	return m.loader.LoadBatch(ctx, ids)
}

// ResolveModule resolves one module by name, installing it from source if
// missing. Unlike LoadPlatforms this executes the install immediately.
func (m *Manager) ResolveModule(ctx context.Context, module, source string) (*modules.Handle, error) {
	return m.loader.ResolveModuleNow(ctx, module, source)
}

// GetPlatform returns the loaded instance for a platform id.
func (m *Manager) GetPlatform(id string) (*platform.Instance, error) {
	return m.registry.Get(id)
}

// GetAllPlatforms returns every loaded instance in sorted id order.
// Registered but unloaded platforms are omitted; use RegisteredIDs for
// the full key set.
func (m *Manager) GetAllPlatforms() ([]*platform.Instance, error) {
	return m.registry.All()
}

// RegisteredIDs returns every registered platform id, sorted, regardless
// of load state.
func (m *Manager) RegisteredIDs() ([]string, error) {
	return m.registry.IDs()
}

// Entries returns a snapshot of the registry for listings.
func (m *Manager) Entries() ([]registry.Entry, error) {
	return m.registry.Entries()
}

// ListModules returns the manifests of every installed module.
func (m *Manager) ListModules() ([]*modules.Manifest, error) {
	return m.store.List()
}

// InstallModule installs one module immediately, outside any batch.
func (m *Manager) InstallModule(ctx context.Context, module, source string) error {
	wait, err := m.acquirer.Queue(ctx, module, source)
	if err != nil {
		return err
	}
	if err := m.acquirer.Flush(ctx); err != nil {
		slog.Debug("module install flush reported failures", "error", err)
	}
	return <-wait
}

// RemoveModule deletes an installed module from the store.
func (m *Manager) RemoveModule(module string) error {
	return m.store.Remove(module)
}

// ModuleDir returns the store directory of an installed module.
func (m *Manager) ModuleDir(module string) (string, error) {
	if !m.store.Has(module) {
		return "", errors.NewWithContext(errors.ErrCodeModuleNotFound,
			fmt.Sprintf("module %s is not installed", module),
			map[string]any{"module": module})
	}
	return m.store.Dir(module), nil
}

// ConfigStore exposes the platform configuration store for CRUD commands.
func (m *Manager) ConfigStore() *config.Store {
	return m.configStore
}
