// Package modules implements the module resolution primitive: an on-disk
// store of installed modules and a registry of kind constructors.
//
// # Store Layout
//
// Each installed module occupies one subdirectory of the store root, named
// after the module, with a module.yaml manifest at its top:
//
//	~/.krepis/modules/
//	├── mod-a/
//	│   ├── module.yaml
//	│   └── ...module content...
//	└── mod-b/
//	    └── module.yaml
//
// The manifest names the module, its version, and its kind:
//
//	name: mod-a
//	version: 1.2.0
//	kind: generic
//	description: web platform support
//
// # Kinds
//
// A kind maps a manifest to a platform.Constructor. Kind packages
// self-register during init:
//
//	func init() {
//	    modules.MustRegisterKind("generic", New)
//	}
//
// # Resolution
//
// StoreResolver.Resolve distinguishes two failure classes. A module whose
// directory does not exist returns ErrCodeModuleNotFound, which loaders
// treat as an acquisition trigger. A module that exists but cannot be
// loaded (bad manifest, name mismatch, unregistered kind) returns
// ErrCodeResolution and is never masked as missing.
package modules
