package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/platform"
)

// Handle is a resolved module: its manifest plus the constructor that
// builds providers from it. Handles are recomputed on every resolution;
// the store is the only persistent state.
type Handle struct {
	// Name is the module identifier the handle was resolved for.
	Name string

	// Manifest is the module's validated manifest.
	Manifest *Manifest

	// New constructs a provider for the platform ids backed by this module.
	New platform.Constructor
}

// Resolver locates installed modules and binds them to constructors.
type Resolver interface {
	// Resolve returns a handle for the named module. A module absent from
	// the store yields ErrCodeModuleNotFound; a module that exists but
	// cannot be loaded yields ErrCodeResolution.
	Resolve(ctx context.Context, module string) (*Handle, error)
}

// StoreResolver resolves modules from an on-disk Store using the global
// kind registry.
type StoreResolver struct {
	store *Store
}

// NewStoreResolver creates a resolver over the given store.
func NewStoreResolver(store *Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// Resolve implements Resolver.
func (r *StoreResolver) Resolve(ctx context.Context, module string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, "resolution canceled", err)
	}

	if !r.store.Has(module) {
		return nil, errors.NewWithContext(errors.ErrCodeModuleNotFound,
			fmt.Sprintf("module %s is not installed", module),
			map[string]any{"module": module, "store": r.store.Root()})
	}

	m, err := r.store.Manifest(module)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution,
			fmt.Sprintf("module %s has an unreadable manifest", module), err)
	}

	if m.Name != module {
		return nil, errors.NewWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("module %s manifest names itself %s", module, m.Name),
			map[string]any{"module": module, "manifest": m.Name})
	}

	factory, ok := FactoryFor(m.Kind)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("module %s has unregistered kind %s", module, m.Kind),
			map[string]any{"module": module, "kind": m.Kind, "known": Kinds()})
	}

	slog.Debug("resolved module",
		"module", module,
		"kind", m.Kind,
		"version", m.Version,
	)

	return &Handle{
		Name:     module,
		Manifest: m,
		New:      factory(m),
	}, nil
}
