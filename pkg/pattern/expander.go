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

package pattern

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/parafs/pkg/walk"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Stater classifies root paths. fsys.FS satisfies it.
type Stater interface {
	Lstat(name string) (fs.FileInfo, error)
}

// 📦 Expansion is the result of expanding a list of arguments.
type Expansion struct {
	Roots    []walk.Entry // Deduplicated roots in argument order
	Warnings []error      // NoMatchError and vanished-match warnings
}

// 🏭 Expander turns raw arguments into classified roots.
type Expander struct {
	globber Globber
	stat    Stater
	limit   int
}

// NewExpander creates an expander that evaluates up to limit arguments at once.
func NewExpander(globber Globber, stat Stater, limit int) *Expander {
	if limit < 1 {
		limit = 1
	}
	return &Expander{globber: globber, stat: stat, limit: limit}
}

// Expand expands every argument concurrently. Arguments that match nothing,
// malformed patterns included, become warnings rather than errors. Only
// context cancellation and globber I/O failures abort the expansion.
func (x *Expander) Expand(ctx context.Context, args []string) (*Expansion, error) {
	logger := zerolog.Ctx(ctx)

	matches := make([][]string, len(args))
	misses := make([]error, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.limit)
	for i, arg := range args {
		g.Go(func() error {
			paths, err := New(arg, x.globber).Expand(gctx)
			var nm *NoMatchError
			switch {
			case err == nil:
				matches[i] = paths
			case errors.As(err, &nm):
				misses[i] = err
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("expanding arguments: %w", err)
	}

	out := &Expansion{}
	seen := make(map[string]bool)
	for i, paths := range matches {
		if misses[i] != nil {
			logger.Warn().Str("arg", args[i]).Msg("argument matched nothing")
			out.Warnings = append(out.Warnings, misses[i])
			continue
		}
		for _, p := range paths {
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			seen[p] = true

			info, err := x.stat.Lstat(p)
			if err != nil {
				logger.Warn().Str("path", p).Err(err).Msg("match vanished before it could be classified")
				out.Warnings = append(out.Warnings, errors.Errorf("dropping %s: %w", p, err))
				continue
			}
			out.Roots = append(out.Roots, walk.NewRoot(p, walk.KindOf(info.Mode())))
		}
	}

	logger.Debug().Int("args", len(args)).Int("roots", len(out.Roots)).Int("warnings", len(out.Warnings)).Msg("expanded arguments")
	return out, nil
}
