// Package loader drives module resolution and batch platform loading.
//
// ResolveModule handles a single module: direct resolution first, then
// queue-install-and-retry when the module is missing. LoadBatch is the
// batch pipeline on top of it:
//
//  1. Snapshot registry entries; unknown ids become immediately failed
//     tasks carrying NOT_REGISTERED.
//  2. Group ids by backing module, in input order. A module is resolved
//     at most once per batch regardless of how many ids depend on it.
//  3. Begin resolution per task; missing modules queue on the acquirer.
//  4. Flush the acquirer exactly once, installing everything the batch
//     queued in a single bulk pass.
//  5. Await every task to its terminal state. No failure cancels or
//     obscures a sibling: the batch settles everything, then reports.
//  6. Construct one instance per resolved task, shared across all of its
//     platform ids, and attach them to the registry in one critical
//     section.
//
// Callers choose the failure shape: LoadBatch reports per-task status in
// result.Output, Load joins the failures into one aggregate error.
package loader
