// Package registry holds the in-memory mapping from platform ids to their
// backing modules and loaded instances.
//
// The registry is explicitly owned state: construct one with New, enable
// it from a configuration document, and pass it to the loader. There is no
// package-level singleton. Enable replaces the whole mapping; Attach binds
// instances after a batch load; both are single critical sections.
package registry
