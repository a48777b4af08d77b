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

// Package walk produces the lazy, depth-first entry sequence for one root.
package walk

import (
	"iter"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/parafs/pkg/fsys"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Order selects where a directory appears relative to its descendants.
type Order uint8

const (
	// PostOrder yields descendants before their directory (removal).
	PostOrder Order = iota
	// PreOrder yields a directory before its descendants (copy).
	PreOrder
)

// ListError is yielded alongside a directory whose listing failed. The
// subtree below that directory is not visited.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return "listing " + e.Path + ": " + e.Err.Error()
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// 🚶 Walker traverses directory trees without following symlinks.
type Walker struct {
	fs      fsys.FS
	exclude []string
}

// Option configures a Walker.
type Option func(*Walker)

// WithExclude skips entries whose root-relative path or base name matches
// any of the doublestar patterns. Excluded directories are not descended.
func WithExclude(patterns ...string) Option {
	return func(w *Walker) {
		w.exclude = append(w.exclude, patterns...)
	}
}

// New creates a walker reading through fs.
func New(fs fsys.FS, opts ...Option) *Walker {
	w := &Walker{fs: fs}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk returns the entries of root's tree in the given order. Each entry is
// yielded exactly once. A directory that cannot be listed is yielded with a
// *ListError and its subtree is skipped; the walk continues with its
// siblings. The sequence is single-use; call Walk again to retraverse.
func (w *Walker) Walk(root Entry, order Order) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		w.visit(root, order, yield)
	}
}

func (w *Walker) visit(e Entry, order Order, yield func(Entry, error) bool) bool {
	if e.Kind != KindDir {
		return yield(e, nil)
	}

	children, err := w.children(e)
	if err != nil {
		return yield(e, err)
	}

	if order == PreOrder && !yield(e, nil) {
		return false
	}
	for _, c := range children {
		if !w.visit(c, order, yield) {
			return false
		}
	}
	if order == PostOrder {
		return yield(e, nil)
	}
	return true
}

func (w *Walker) children(dir Entry) ([]Entry, error) {
	list, err := w.fs.ReadDir(dir.Path)
	if err != nil {
		return nil, errors.WithStack(&ListError{Path: dir.Path, Err: err})
	}

	out := make([]Entry, 0, len(list))
	for _, de := range list {
		c := dir.child(de.Name(), KindOf(de.Type()))
		if w.excluded(c) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (w *Walker) excluded(e Entry) bool {
	if len(w.exclude) == 0 {
		return false
	}
	rel := filepath.ToSlash(e.Rel())
	base := filepath.Base(e.Path)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
