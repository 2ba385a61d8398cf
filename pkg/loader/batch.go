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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/loader/result"
	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/platform"
)

// task is one unit of batch work: a distinct backing module and every
// platform id it serves in this batch. Within one batch all tasks have
// disjoint, non-empty id sets and every distinct module appears in exactly
// one task.
type task struct {
	module string
	source string
	ids    []string

	// wait is the install completion signal when the module was missing
	// and got queued; nil when it resolved directly.
	wait <-chan error

	// installed records that this batch queued an install for the module.
	installed bool

	handle   *modules.Handle
	instance *platform.Instance
	err      error
	started  time.Time
	duration time.Duration
}

// settle marks the task's terminal state and duration.
func (t *task) settle(err error) {
	t.err = err
	if !t.started.IsZero() {
		t.duration = time.Since(t.started)
	}
}

// LoadBatch resolves and instantiates the given platform ids, settling
// every task before returning.
//
// The error return is reserved for batch preconditions (no ids, registry
// not enabled). Per-task failures never abort sibling tasks; they are
// reported in Output.Errors, one per failed task, alongside the successes
// in Output.Results.
//
// A module backing several of the ids is resolved at most once, and all
// installs queued by the batch execute in a single flush pass. Successful
// instances are attached to the registry in one critical section before
// the output is returned. Duplicate ids in the input are collapsed.
func (l *Loader) LoadBatch(ctx context.Context, ids []string) (*result.Output, error) {
	start := time.Now()

	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "at least one platform id is required")
	}
	if !l.registry.Enabled() {
		return nil, errors.New(errors.ErrCodeNotEnabled, "platform registry has not been enabled")
	}

	batchesTotal.Inc()

	tasks := l.indexTasks(ids)

	slog.Debug("starting batch load",
		"platforms", len(ids),
		"tasks", len(tasks),
	)

	// Begin resolution for every task before executing any install, so a
	// batch of N missing modules triggers one bulk pass rather than N.
	for _, t := range tasks {
		if t.err != nil {
			continue
		}
		t.started = time.Now()
		h, wait, err := l.beginResolve(ctx, t.module, t.source)
		switch {
		case err != nil:
			t.settle(err)
		case h != nil:
			t.handle = h
		default:
			t.wait = wait
			t.installed = true
		}
	}

	if err := l.acquirer.Flush(ctx); err != nil {
		// Waiters received their own outcomes; this is observability only.
		slog.Warn("module install flush reported failures", "error", err)
	}

	l.awaitTasks(ctx, tasks)

	// One instance per resolved task, shared across all its ids.
	for _, t := range tasks {
		if t.err != nil || t.handle == nil {
			continue
		}
		provider, err := t.handle.New(t.module, t.ids)
		if err != nil {
			t.settle(errors.WrapWithContext(errors.ErrCodeResolution,
				fmt.Sprintf("module %s failed to construct its provider", t.module), err,
				map[string]any{"module": t.module, "platforms": t.ids}))
			continue
		}
		t.instance = platform.NewInstance(t.module, t.ids, provider)
		t.settle(nil)
	}

	if err := l.attach(tasks); err != nil {
		return nil, err
	}

	out := l.buildOutput(ids, tasks)
	out.TotalDuration = time.Since(start)
	out.Created = time.Now().UTC()

	batchDuration.Observe(out.TotalDuration.Seconds())
	slog.Info("batch load complete", "summary", out.Summary())

	return out, nil
}

// Load is the aggregate form of LoadBatch: distinct instances in task
// order plus every task failure joined into one error. Successes are
// attached to the registry even when siblings failed.
func (l *Loader) Load(ctx context.Context, ids ...string) ([]*platform.Instance, error) {
	out, err := l.LoadBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	return out.Instances(), out.Err()
}

// indexTasks snapshots registry entries and groups ids by backing module,
// in input order. The first id needing a module creates its task; later
// ids append to it. Unknown ids become immediately failed tasks.
func (l *Loader) indexTasks(ids []string) []*task {
	tasks := make([]*task, 0, len(ids))
	index := make(map[string]*task, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		e, err := l.registry.Entry(id)
		if err != nil {
			t := &task{ids: []string{id}}
			t.settle(err)
			tasks = append(tasks, t)
			continue
		}

		if t, ok := index[e.Module]; ok {
			t.ids = append(t.ids, id)
			continue
		}

		t := &task{module: e.Module, source: e.Source, ids: []string{id}}
		index[e.Module] = t
		tasks = append(tasks, t)
	}

	return tasks
}

// awaitTasks settles every queued task: each waits for its install signal
// and re-resolves. Workers capture failures into their own task rather
// than returning them, so no failure cancels a sibling.
func (l *Loader) awaitTasks(ctx context.Context, tasks []*task) {
	g, gctx := errgroup.WithContext(ctx)

	for _, t := range tasks {
		if t.wait == nil {
			continue
		}
		g.Go(func() error {
			h, err := l.awaitResolve(gctx, t.module, t.wait)
			if err != nil {
				t.settle(err)
				return nil
			}
			t.handle = h
			installsTotal.Inc()
			return nil
		})
	}

	_ = g.Wait()
}

// attach binds every successful instance to all of its platform ids in a
// single registry critical section.
func (l *Loader) attach(tasks []*task) error {
	instances := make(map[string]*platform.Instance)
	for _, t := range tasks {
		if t.instance == nil {
			continue
		}
		for _, id := range t.ids {
			instances[id] = t.instance
		}
	}

	if len(instances) == 0 {
		return nil
	}
	return l.registry.Attach(instances)
}

// buildOutput assembles one Result per task in task creation order.
func (l *Loader) buildOutput(requested []string, tasks []*task) *result.Output {
	out := &result.Output{
		Requested: append([]string(nil), requested...),
		Results:   make([]*result.Result, 0, len(tasks)),
	}
	out.Init(header.KindLoadReport, header.APIVersion, "")

	for _, t := range tasks {
		r := &result.Result{
			Module:    t.module,
			Platforms: t.ids,
			Success:   t.err == nil && t.instance != nil,
			Installed: t.installed,
			Instance:  t.instance,
			Duration:  t.duration,
		}
		if t.err != nil {
			taskErr := result.NewTaskError(t.module, t.ids, t.err)
			r.Error = taskErr
			out.Errors = append(out.Errors, taskErr)
			slog.Error("load task failed",
				"module", t.module,
				"platforms", t.ids,
				"code", taskErr.Code,
				"error", t.err,
			)
		}
		tasksTotal.WithLabelValues(taskStatus(r.Success)).Inc()
		out.Results = append(out.Results, r)
	}

	return out
}
