// Package platform defines the contract between loadable modules and the
// rest of the system.
//
// A module kind registers a Constructor; the loader invokes it once per
// distinct module in a batch, passing every platform id that maps to the
// module. The resulting Provider is wrapped in an Instance, which carries
// a unique id, the module name, and the full set of platform ids sharing
// the construction.
package platform
