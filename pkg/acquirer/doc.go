// Package acquirer fetches module artifacts and installs them into the
// module store.
//
// Installation is split into two phases so a batch of missing modules
// triggers one bulk install pass instead of N independent ones:
//
//	wait, _ := acq.Queue(ctx, "mod-a", "oci://ghcr.io/nvidia/mod-a:1.2.0")
//	...queue the rest of the batch...
//	_ = acq.Flush(ctx) // installs everything queued, concurrently
//	err := <-wait      // this module's outcome
//
// Queue never performs I/O beyond source validation. Duplicate queues for
// the same module coalesce: one install runs, every waiter is settled with
// its outcome. Flush is idempotent when nothing is queued.
//
// Two source forms are supported (see ParseSource): OCI artifact
// references (oci://registry/repo:tag, pulled via ORAS with Docker
// credential support) and local directories (copied recursively). Either
// way the artifact is staged, its manifest verified against the requested
// module name, and the stage committed atomically so a failed install
// never leaves a half-written module behind.
package acquirer
