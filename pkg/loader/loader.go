// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NVIDIA/krepis/pkg/acquirer"
	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/registry"
)

// Loader resolves modules to their platform constructors, acquiring
// missing modules through the configured acquirer, and drives batch loads
// against the registry.
type Loader struct {
	registry *registry.Registry
	resolver modules.Resolver
	acquirer acquirer.Acquirer
}

// New wires a loader to its collaborators. All three are required.
func New(reg *registry.Registry, res modules.Resolver, acq acquirer.Acquirer) (*Loader, error) {
	if reg == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "registry is required")
	}
	if res == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "module resolver is required")
	}
	if acq == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "acquirer is required")
	}
	return &Loader{registry: reg, resolver: res, acquirer: acq}, nil
}

// ResolveModule resolves a single module to its handle. A missing module
// is queued for installation and resolution resumes once a Flush installs
// it; the flush itself is driven by the batch layer (or by the caller for
// standalone use).
//
// Empty arguments fail with ErrCodeInvalidArgument before the acquirer is
// touched. Resolution failures other than "not installed" are never masked
// as missing.
func (l *Loader) ResolveModule(ctx context.Context, module, source string) (*modules.Handle, error) {
	h, wait, err := l.beginResolve(ctx, module, source)
	if err != nil {
		return nil, err
	}
	if h != nil {
		return h, nil
	}
	return l.awaitResolve(ctx, module, wait)
}

// ResolveModuleNow is ResolveModule with an immediate flush: the install
// pass runs right away for whatever is queued instead of waiting for a
// batch to trigger it.
func (l *Loader) ResolveModuleNow(ctx context.Context, module, source string) (*modules.Handle, error) {
	h, wait, err := l.beginResolve(ctx, module, source)
	if err != nil {
		return nil, err
	}
	if h != nil {
		return h, nil
	}
	if err := l.acquirer.Flush(ctx); err != nil {
		slog.Debug("module install flush reported failures", "error", err)
	}
	return l.awaitResolve(ctx, module, wait)
}

// beginResolve is the synchronous half of resolution: it validates
// arguments, attempts direct resolution, and queues an install when the
// module is missing. Exactly one of handle, wait, err is set.
func (l *Loader) beginResolve(ctx context.Context, module, source string) (*modules.Handle, <-chan error, error) {
	if strings.TrimSpace(module) == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidArgument, "module name is required")
	}
	if strings.TrimSpace(source) == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidArgument, "module source is required")
	}

	h, err := l.resolver.Resolve(ctx, module)
	if err == nil {
		return h, nil, nil
	}

	if !errors.HasCode(err, errors.ErrCodeModuleNotFound) {
		if errors.HasCode(err, errors.ErrCodeResolution) {
			return nil, nil, err
		}
		return nil, nil, errors.Wrap(errors.ErrCodeResolution,
			fmt.Sprintf("failed to resolve module %s", module), err)
	}

	wait, err := l.acquirer.Queue(ctx, module, source)
	if err != nil {
		return nil, nil, err
	}
	return nil, wait, nil
}

// awaitResolve is the asynchronous half: it waits for the queued install
// to settle, then re-attempts direct resolution. Any failure after the
// install pass reports as ErrCodeResolution.
func (l *Loader) awaitResolve(ctx context.Context, module string, wait <-chan error) (*modules.Handle, error) {
	select {
	case err := <-wait:
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeResolution) {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeResolution,
				fmt.Sprintf("installation of module %s failed", module), err)
		}
	case <-ctx.Done():
		return nil, errors.WrapWithContext(errors.ErrCodeResolution,
			fmt.Sprintf("canceled waiting for module %s to install", module), ctx.Err(),
			map[string]any{"module": module})
	}

	h, err := l.resolver.Resolve(ctx, module)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeResolution) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeResolution,
			fmt.Sprintf("module %s is not resolvable after install", module), err)
	}
	return h, nil
}
