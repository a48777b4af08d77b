// Copyright 2025 walteh LLC
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

// Package engine wires expansion, traversal, scheduling and aggregation
// into the remove and copy runs.
package engine

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/parafs/pkg/config"
	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/pattern"
	"github.com/walteh/parafs/pkg/status"
	"github.com/walteh/parafs/pkg/walk"
)

// ErrUsage marks invalid argument combinations detected before any work.
var ErrUsage = errors.Base("usage error")

// 🔧 Options configures an Engine.
type Options struct {
	// Concurrency is the worker pool size; defaults to config.DefaultConcurrency
	Concurrency int
	// FS defaults to the OS filesystem
	FS fsys.FS
	// Globber defaults to pattern.OSGlobber
	Globber pattern.Globber
	// Exclude holds doublestar patterns skipped during traversal
	Exclude []string

	Force    bool
	Verify   bool
	Preserve bool

	// Sinks receive every outcome after the aggregator
	Sinks []operation.Sink
	// Observer is notified around each execution
	Observer operation.Observer
}

// 📋 Report is the result of one run.
type Report struct {
	Summary status.Summary
	Stats   operation.Stats
}

// 🚀 Engine runs bulk remove and copy operations.
type Engine struct {
	opts   Options
	walker *walk.Walker
}

// 🏭 New creates an engine, applying defaults to opts.
func New(opts Options) *Engine {
	if opts.Concurrency < 1 {
		opts.Concurrency = config.DefaultConcurrency()
	}
	if opts.FS == nil {
		opts.FS = fsys.NewOS()
	}
	if opts.Globber == nil {
		opts.Globber = pattern.OSGlobber{}
	}
	return &Engine{
		opts:   opts,
		walker: walk.New(opts.FS, walk.WithExclude(opts.Exclude...)),
	}
}

// run is one execution of the pipeline.
type run struct {
	agg    *status.Aggregator
	runner *operation.Runner
}

func (e *Engine) expand(ctx context.Context, agg *status.Aggregator, args []string) ([]walk.Entry, error) {
	x := pattern.NewExpander(e.opts.Globber, e.opts.FS, e.opts.Concurrency)
	expansion, err := x.Expand(ctx, args)
	if err != nil {
		return nil, err
	}
	for _, w := range expansion.Warnings {
		agg.Warn(w)
	}
	return expansion.Roots, nil
}

func (e *Engine) start(ctx context.Context, agg *status.Aggregator, exec operation.Executor, abandon bool) *run {
	sinks := append(operation.Sinks{agg}, e.opts.Sinks...)

	runner := operation.NewRunner(operation.RunnerOptions{
		Workers:           e.opts.Concurrency,
		Executor:          exec,
		Sink:              sinks,
		Observer:          e.opts.Observer,
		AbandonDependents: abandon,
	})
	runner.Start(ctx)
	return &run{agg: agg, runner: runner}
}

// walkAll runs fn for every root, several at a time. A draining runner
// stops the walk quietly.
func (e *Engine) walkAll(ctx context.Context, roots []walk.Entry, fn func(ctx context.Context, i int, root walk.Entry) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, root := range roots {
		g.Go(func() error {
			err := fn(gctx, i, root)
			if errors.Is(err, operation.ErrDraining) {
				zerolog.Ctx(ctx).Debug().Str("root", root.Path).Msg("walk stopped, runner draining")
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// finish waits for the runner and finalizes the report.
func (r *run) finish(ctx context.Context, walkErr error) (*Report, error) {
	stats := r.runner.Wait()
	if ctx.Err() != nil {
		r.agg.MarkCanceled()
	}

	report := &Report{Summary: r.agg.Summary(), Stats: stats}
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return report, errors.Errorf("walking: %w", walkErr)
	}
	return report, nil
}

// canceledReport is returned when the run is interrupted before any unit
// was accepted.
func canceledReport(agg *status.Aggregator) *Report {
	agg.MarkCanceled()
	return &Report{Summary: agg.Summary()}
}
