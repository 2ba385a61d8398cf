package acquirer

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/modules"
)

// Acquirer queues module installations and executes them in bulk.
//
// Queue only registers intent: nothing is fetched until Flush runs. The
// returned channel receives the install outcome (nil on success) exactly
// once and is then closed. Duplicate queues for the same module coalesce
// onto one pending install with multiple waiters.
type Acquirer interface {
	// Queue registers a module for installation from the given source and
	// returns a channel that settles when a later Flush installs it.
	Queue(ctx context.Context, module, source string) (<-chan error, error)

	// Flush installs everything previously queued, settling every waiter.
	// Idempotent when nothing is queued.
	Flush(ctx context.Context) error
}

// pendingInstall is one queued module with everyone waiting on it.
type pendingInstall struct {
	module  string
	source  string
	waiters []chan error
}

// Installer is the default Acquirer: it pulls OCI artifacts or copies
// local directories into a module store.
type Installer struct {
	store       *modules.Store
	concurrency int64
	timeout     time.Duration
	plainHTTP   bool
	insecureTLS bool

	mu      sync.Mutex
	pending map[string]*pendingInstall
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithConcurrency bounds how many installs a single Flush runs at once.
func WithConcurrency(n int64) InstallerOption {
	return func(i *Installer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithInstallTimeout bounds the duration of a single module install.
func WithInstallTimeout(d time.Duration) InstallerOption {
	return func(i *Installer) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithPlainHTTP uses HTTP instead of HTTPS for OCI registries (local development).
func WithPlainHTTP(enabled bool) InstallerOption {
	return func(i *Installer) {
		i.plainHTTP = enabled
	}
}

// WithInsecureTLS skips TLS certificate verification for OCI registries.
func WithInsecureTLS(enabled bool) InstallerOption {
	return func(i *Installer) {
		i.insecureTLS = enabled
	}
}

// NewInstaller creates an Installer that materializes modules into the
// given store.
func NewInstaller(store *modules.Store, opts ...InstallerOption) (*Installer, error) {
	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "module store is required")
	}

	i := &Installer{
		store:       store,
		concurrency: defaults.InstallConcurrency,
		timeout:     defaults.InstallTimeout,
		pending:     make(map[string]*pendingInstall),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Queue implements Acquirer. The source is validated here so malformed
// references fail at queue time rather than mid-flush.
func (i *Installer) Queue(ctx context.Context, module, source string) (<-chan error, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, "queue canceled", err)
	}
	if !modules.IsValidName(module) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid module name %q", module),
			map[string]any{"module": module})
	}
	if _, err := ParseSource(source); err != nil {
		return nil, err
	}

	wait := make(chan error, 1)

	i.mu.Lock()
	defer i.mu.Unlock()

	if p, ok := i.pending[module]; ok {
		if p.source != source {
			slog.Warn("module queued with conflicting sources, first one wins",
				"module", module,
				"queued", p.source,
				"ignored", source,
			)
		}
		p.waiters = append(p.waiters, wait)
		return wait, nil
	}

	i.pending[module] = &pendingInstall{
		module:  module,
		source:  source,
		waiters: []chan error{wait},
	}

	slog.Debug("queued module install", "module", module, "source", source)
	return wait, nil
}

// Flush implements Acquirer. All pending installs run concurrently,
// bounded by the configured concurrency. Every waiter receives its
// install's outcome even when the context is canceled mid-flush; the
// returned error joins all failures.
func (i *Installer) Flush(ctx context.Context) error {
	i.mu.Lock()
	batch := i.pending
	i.pending = make(map[string]*pendingInstall)
	i.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	slog.Info("flushing module installs", "count", len(batch))
	start := time.Now()

	sem := semaphore.NewWeighted(i.concurrency)
	var g errgroup.Group
	results := make(chan error, len(batch))

	for _, p := range batch {
		g.Go(func() error {
			err := i.runInstall(ctx, sem, p)
			for _, w := range p.waiters {
				w <- err
				close(w)
			}
			results <- err
			return nil
		})
	}

	// Workers never return errors; failures travel through the results
	// channel so one bad install cannot cancel its siblings.
	_ = g.Wait()
	close(results)

	var errs []error
	for err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}

	slog.Info("module install flush complete",
		"count", len(batch),
		"failed", len(errs),
		"duration_sec", time.Since(start).Seconds(),
	)

	return goerrors.Join(errs...)
}

// runInstall executes one install under the flush semaphore.
func (i *Installer) runInstall(ctx context.Context, sem *semaphore.Weighted, p *pendingInstall) error {
	if err := sem.Acquire(ctx, 1); err != nil {
		return errors.WrapWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("install of module %s canceled", p.module), err,
			map[string]any{"module": p.module})
	}
	defer sem.Release(1)

	ictx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	err := i.install(ictx, p.module, p.source)
	if err != nil {
		slog.Error("module install failed",
			"module", p.module,
			"source", p.source,
			"error", err,
		)
		return err
	}

	slog.Debug("module installed",
		"module", p.module,
		"source", p.source,
		"duration_sec", time.Since(start).Seconds(),
	)
	return nil
}

// install materializes one module into the store: the artifact is staged,
// its manifest verified, and the stage committed atomically.
func (i *Installer) install(ctx context.Context, module, source string) error {
	src, err := ParseSource(source)
	if err != nil {
		return err
	}

	stage, err := i.store.Stage()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResolution,
			fmt.Sprintf("failed to stage install of module %s", module), err)
	}

	if src.IsOCI {
		err = i.pull(ctx, src, stage)
	} else {
		err = copyLocal(src.LocalPath, stage)
	}
	if err != nil {
		i.store.Discard(stage)
		return errors.WrapWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("failed to fetch module %s", module), err,
			map[string]any{"module": module, "source": source})
	}

	if err := verifyStagedModule(stage, module); err != nil {
		i.store.Discard(stage)
		return err
	}

	if err := i.store.Commit(stage, module); err != nil {
		i.store.Discard(stage)
		return errors.Wrap(errors.ErrCodeResolution,
			fmt.Sprintf("failed to commit module %s", module), err)
	}

	return nil
}
