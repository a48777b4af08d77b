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

package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/status"
	"github.com/walteh/parafs/pkg/walk"
)

// target pairs an expanded root with the path it is copied to.
type target struct {
	root walk.Entry
	dest string
}

// 📦 Copy recreates every path matched by sources under dest. A directory
// is created before anything inside it is copied; when a copy fails, the
// entries below it are abandoned.
func (e *Engine) Copy(ctx context.Context, sources []string, dest string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	agg := status.NewAggregator()

	roots, err := e.expand(ctx, agg, sources)
	if errors.Is(err, context.Canceled) {
		return canceledReport(agg), nil
	}
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return &Report{Summary: agg.Summary()}, nil
	}

	targets, err := e.plan(roots, dest)
	if err != nil {
		return nil, err
	}
	for _, msg := range collisions(targets) {
		logger.Warn().Msg(msg)
		agg.Notice(msg)
	}
	logger.Debug().Int("roots", len(targets)).Str("dest", dest).Msg("copying")

	exec := operation.NewCopyOperation(operation.Options{
		FS:       e.opts.FS,
		Verify:   e.opts.Verify,
		Preserve: e.opts.Preserve,
	})
	r := e.start(ctx, agg, exec, true)

	walkErr := e.walkAll(ctx, roots, func(ctx context.Context, i int, _ walk.Entry) error {
		return e.copyTree(ctx, r.runner, targets[i])
	})
	return r.finish(ctx, walkErr)
}

// copyTree submits one root in pre-order. parents[d] is the task of the
// directory at depth d on the current path.
func (e *Engine) copyTree(ctx context.Context, runner *operation.Runner, tg target) error {
	var parents []*operation.Task

	for entry, walkErr := range e.walker.Walk(tg.root, walk.PreOrder) {
		u := operation.Unit{
			Entry: entry,
			Op:    operation.OpCopy,
			Dest:  filepath.Join(tg.dest, entry.Rel()),
		}

		var after []*operation.Task
		if entry.Depth > 0 {
			after = parents[entry.Depth-1 : entry.Depth]
		}

		var (
			t   *operation.Task
			err error
		)
		if walkErr != nil {
			t, err = runner.Report(u, walkErr)
		} else {
			t, err = runner.Submit(ctx, u, after...)
		}
		if err != nil {
			return err
		}

		if entry.IsDir() {
			parents = append(parents[:entry.Depth], t)
		}
	}
	return nil
}

// plan maps each root to its destination:
//   - dest is an existing directory: each root goes to dest/<base>
//   - dest does not exist: the single root is copied as dest
//
// Anything else is a usage error.
func (e *Engine) plan(roots []walk.Entry, dest string) ([]target, error) {
	dest = filepath.Clean(dest)

	info, err := e.opts.FS.Stat(dest)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.Errorf("%w: destination %s exists and is not a directory", ErrUsage, dest)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, errors.Errorf("checking destination %s: %w", dest, err)
	case err != nil && len(roots) > 1:
		return nil, errors.Errorf("%w: destination %s does not exist and %d sources were given", ErrUsage, dest, len(roots))
	}
	into := err == nil

	out := make([]target, 0, len(roots))
	for _, root := range roots {
		to := dest
		if into {
			to = filepath.Join(dest, filepath.Base(root.Path))
		}
		if err := checkSelfCopy(root, to); err != nil {
			return nil, err
		}
		out = append(out, target{root: root, dest: to})
	}
	return out, nil
}

func checkSelfCopy(root walk.Entry, to string) error {
	src, err := filepath.Abs(root.Path)
	if err != nil {
		return errors.Errorf("resolving %s: %w", root.Path, err)
	}
	dst, err := filepath.Abs(to)
	if err != nil {
		return errors.Errorf("resolving %s: %w", to, err)
	}
	if src == dst {
		return errors.Errorf("%w: %s and %s are the same path", ErrUsage, root.Path, to)
	}
	if root.IsDir() && isUnder(dst, src) {
		return errors.Errorf("%w: cannot copy directory %s into itself (%s)", ErrUsage, root.Path, to)
	}
	return nil
}

// collisions describes roots that share a destination. The last copy to
// finish wins, so the result is not deterministic.
func collisions(targets []target) []string {
	bySink := make(map[string][]string)
	var order []string
	for _, t := range targets {
		if _, ok := bySink[t.dest]; !ok {
			order = append(order, t.dest)
		}
		bySink[t.dest] = append(bySink[t.dest], t.root.Path)
	}

	var out []string
	for _, dest := range order {
		if srcs := bySink[dest]; len(srcs) > 1 {
			out = append(out, fmt.Sprintf("%s is the destination of several sources (%s); the last one copied wins",
				dest, strings.Join(srcs, ", ")))
		}
	}
	return out
}
