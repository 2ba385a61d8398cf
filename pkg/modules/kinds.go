package modules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NVIDIA/krepis/pkg/platform"
)

// Factory builds a platform.Constructor bound to a module's manifest.
// Kinds register factories; resolution binds a factory to the manifest it
// just read, producing the constructor the loader invokes.
type Factory func(m *Manifest) platform.Constructor

// Global registry for module kind factories.
// Kinds register themselves via init() functions.
var (
	globalKinds = make(map[string]Factory)
	globalMu    sync.RWMutex
)

// RegisterKind registers a kind factory globally.
// This is typically called from init() functions in kind packages.
// Returns an error if a factory with the same kind is already registered.
func RegisterKind(kind string, factory Factory) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if kind == "" {
		return fmt.Errorf("kind must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for kind %s must not be nil", kind)
	}
	if _, exists := globalKinds[kind]; exists {
		return fmt.Errorf("kind %s already registered", kind)
	}

	globalKinds[kind] = factory
	return nil
}

// MustRegisterKind is a convenience function that panics on registration
// error. Use this in init() functions where registration must succeed.
func MustRegisterKind(kind string, factory Factory) {
	if err := RegisterKind(kind, factory); err != nil {
		panic(err)
	}
}

// FactoryFor returns the globally registered factory for a kind.
func FactoryFor(kind string) (Factory, bool) {
	globalMu.RLock()
	defer globalMu.RUnlock()

	f, ok := globalKinds[kind]
	return f, ok
}

// Kinds returns all globally registered kind names, sorted.
func Kinds() []string {
	globalMu.RLock()
	defer globalMu.RUnlock()

	kinds := make([]string, 0, len(globalKinds))
	for k := range globalKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
