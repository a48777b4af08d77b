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

// Package pattern expands command line arguments into root paths.
//
// An argument is either a literal path or a doublestar glob: `*` and `?`
// never cross a path separator, `**` does. Hidden entries are matched.
package pattern

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// NoMatchError reports an argument that expanded to nothing. It is a
// warning: the run continues with the remaining arguments. Err is set when
// the argument could not be matched at all, such as a malformed pattern.
type NoMatchError struct {
	Arg string
	Err error
}

func (e *NoMatchError) Error() string {
	if e.Err != nil {
		return "skipped " + e.Arg + ": " + e.Err.Error()
	}
	return "skipped " + e.Arg + ": does not match any file or directory"
}

func (e *NoMatchError) Unwrap() error {
	return e.Err
}

// 🔍 Globber is the pattern-matching primitive the expander relies on.
type Globber interface {
	// Glob returns the paths matching pattern.
	Glob(pattern string) ([]string, error)
	// Exists reports whether path names an entry, without following symlinks.
	Exists(path string) bool
}

// 🖥️ OSGlobber globs against the operating system filesystem.
type OSGlobber struct{}

func (OSGlobber) Glob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithNoFollow())
}

func (OSGlobber) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// 🧪 FSGlobber globs against any fs.FS, such as fstest.MapFS. Patterns use
// slash-separated, unrooted fs.FS paths.
type FSGlobber struct {
	FS fs.FS
}

func (g FSGlobber) Glob(pattern string) ([]string, error) {
	return doublestar.Glob(g.FS, pattern, doublestar.WithNoFollow())
}

func (g FSGlobber) Exists(path string) bool {
	if !fs.ValidPath(path) {
		return false
	}
	_, err := fs.Stat(g.FS, path)
	return err == nil
}

// 🎯 Pattern is one raw argument with an explicit expansion capability.
type Pattern struct {
	raw     string
	globber Globber
}

// New wraps a raw argument.
func New(raw string, globber Globber) Pattern {
	return Pattern{raw: raw, globber: globber}
}

// String returns the raw argument.
func (p Pattern) String() string {
	return p.raw
}

// IsGlob reports whether the argument contains glob metacharacters.
func (p Pattern) IsGlob() bool {
	return hasMeta(p.raw)
}

// Expand returns the matching paths in lexical order. A literal path that
// exists is returned as-is even when it contains metacharacters.
func (p Pattern) Expand(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("expanding %q: %w", p.raw, err)
	}

	if p.globber.Exists(p.raw) {
		return []string{filepath.Clean(p.raw)}, nil
	}
	if !p.IsGlob() {
		return nil, errors.WithStack(&NoMatchError{Arg: p.raw})
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(p.raw)) {
		return nil, errors.WithStack(&NoMatchError{Arg: p.raw, Err: doublestar.ErrBadPattern})
	}

	matches, err := p.globber.Glob(p.raw)
	if errors.Is(err, doublestar.ErrBadPattern) {
		return nil, errors.WithStack(&NoMatchError{Arg: p.raw, Err: err})
	}
	if err != nil {
		return nil, errors.Errorf("expanding %q: %w", p.raw, err)
	}
	if len(matches) == 0 {
		return nil, errors.WithStack(&NoMatchError{Arg: p.raw})
	}
	return matches, nil
}

func hasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
