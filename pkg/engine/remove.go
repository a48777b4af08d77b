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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/status"
	"github.com/walteh/parafs/pkg/walk"
)

// 🗑️ Remove deletes every path matched by args. Directories are removed
// after all of their children have reported; a directory that keeps a
// failed child fails as not empty.
func (e *Engine) Remove(ctx context.Context, args []string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	agg := status.NewAggregator()

	roots, err := e.expand(ctx, agg, args)
	if errors.Is(err, context.Canceled) {
		return canceledReport(agg), nil
	}
	if err != nil {
		return nil, err
	}
	roots = pruneNested(roots)
	logger.Debug().Int("roots", len(roots)).Msg("removing")

	exec := operation.NewRemoveOperation(operation.Options{FS: e.opts.FS, Force: e.opts.Force})
	r := e.start(ctx, agg, exec, false)

	walkErr := e.walkAll(ctx, roots, func(ctx context.Context, _ int, root walk.Entry) error {
		return e.removeTree(ctx, r.runner, root)
	})
	return r.finish(ctx, walkErr)
}

// removeTree submits one root in post-order. children[d] collects the tasks
// at depth d whose parent has not been yielded yet.
func (e *Engine) removeTree(ctx context.Context, runner *operation.Runner, root walk.Entry) error {
	var children [][]*operation.Task

	for entry, walkErr := range e.walker.Walk(root, walk.PostOrder) {
		for len(children) <= entry.Depth+1 {
			children = append(children, nil)
		}

		u := operation.Unit{Entry: entry, Op: operation.OpRemove}

		var (
			t   *operation.Task
			err error
		)
		if walkErr != nil {
			t, err = runner.Report(u, walkErr)
		} else {
			t, err = runner.Submit(ctx, u, children[entry.Depth+1]...)
		}
		if err != nil {
			return err
		}

		children[entry.Depth+1] = nil
		children[entry.Depth] = append(children[entry.Depth], t)
	}
	return nil
}

// pruneNested drops roots that lie inside a directory root, since walking
// the outer root already reaches them.
func pruneNested(roots []walk.Entry) []walk.Entry {
	var dirs []string
	for _, r := range roots {
		if r.IsDir() {
			dirs = append(dirs, r.Path)
		}
	}
	if len(dirs) == 0 {
		return roots
	}

	out := roots[:0:0]
	for _, r := range roots {
		if !within(r.Path, dirs) {
			out = append(out, r)
		}
	}
	return out
}

func within(path string, dirs []string) bool {
	for _, d := range dirs {
		if d != path && isUnder(path, d) {
			return true
		}
	}
	return false
}

// isUnder reports whether path is dir or lies below it.
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
