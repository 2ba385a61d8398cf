package platform

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Provider is the object a module constructs for the platforms it backs.
// Module kinds supply the implementation; the loader and registry treat
// providers opaquely beyond this identity surface.
type Provider interface {
	// Module returns the name of the module that constructed the provider.
	Module() string
	// Platforms returns the platform ids the provider was constructed for.
	Platforms() []string
}

// Constructor builds a Provider for a module and the platform ids it will
// serve. A single call receives every id that maps to the module, so one
// provider is shared across all of them.
type Constructor func(module string, platformIDs []string) (Provider, error)

// Instance is a constructed provider together with its load-time identity.
// One instance exists per distinct module in a batch; every platform id
// backed by that module shares the same *Instance.
type Instance struct {
	// InstanceID uniquely identifies this construction.
	InstanceID string `json:"instanceId" yaml:"instanceId"`

	// Module is the name of the module that produced the provider.
	Module string `json:"module" yaml:"module"`

	// Platforms are the platform ids the instance serves, sorted.
	Platforms []string `json:"platforms" yaml:"platforms"`

	// CreatedAt is when the provider was constructed.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	// Provider is the constructed object. Not serialized.
	Provider Provider `json:"-" yaml:"-"`
}

// NewInstance wraps a constructed provider with identity metadata.
// The platform id slice is copied and sorted; the caller's slice is not
// retained.
func NewInstance(module string, platformIDs []string, p Provider) *Instance {
	ids := make([]string, len(platformIDs))
	copy(ids, platformIDs)
	sort.Strings(ids)

	return &Instance{
		InstanceID: uuid.New().String(),
		Module:     module,
		Platforms:  ids,
		CreatedAt:  time.Now().UTC(),
		Provider:   p,
	}
}

// Serves reports whether the instance was constructed for the given
// platform id.
func (i *Instance) Serves(platformID string) bool {
	for _, id := range i.Platforms {
		if id == platformID {
			return true
		}
	}
	return false
}

// String returns a short human-readable identity for logs.
func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s)", i.Module, i.InstanceID)
}
