// Package platforms is the public facade: enable a platform mapping,
// load platforms in batches, and read back loaded instances.
//
//	mgr, err := platforms.New()
//	if err != nil { ... }
//	if err := mgr.EnablePlatforms(ctx, nil); err != nil { ... } // default config
//	instances, err := mgr.LoadPlatforms(ctx, "web", "android", "ios")
//
// Platforms backed by the same module share one instance: loading "android"
// and "ios" above resolves their common module once and both ids observe
// the same *platform.Instance. Missing modules are installed on demand in
// a single bulk pass per batch.
package platforms
