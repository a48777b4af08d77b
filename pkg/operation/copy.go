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

package operation

import (
	"context"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

// 📦 NewCopyOperation creates the executor for copy units
func NewCopyOperation(opts Options) Executor {
	return &copyOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 📦 copyOperation recreates one entry at its destination
type copyOperation struct {
	BaseOperation
}

// 🏃 Execute copies one entry. The destination's parent is guaranteed to
// exist because directory units are prerequisites of their children.
func (op *copyOperation) Execute(ctx context.Context, u Unit) (Result, error) {
	if u.Dest == "" {
		return Result{}, errors.Errorf("copying %s: no destination", u.Entry.Path)
	}

	info, err := op.FS.Lstat(u.Entry.Path)
	if err != nil {
		return Result{}, errors.Errorf("copying %s: %w", u.Entry.Path, err)
	}

	switch u.Entry.Kind {
	case walk.KindFile:
		return op.copyFile(ctx, u, info)
	case walk.KindSymlink:
		return op.copySymlink(ctx, u, info)
	case walk.KindDir:
		return op.copyDir(ctx, u, info)
	default:
		return Result{}, errors.Errorf("copying %s (%s): %w", u.Entry.Path, info.Mode().Type(), ErrUnsupported)
	}
}

// 📄 copyFile overwrites any existing non-directory destination
func (op *copyOperation) copyFile(ctx context.Context, u Unit, info fs.FileInfo) (Result, error) {
	if err := op.clearDestination(u); err != nil {
		return Result{}, err
	}

	perm := info.Mode().Perm()
	n, sum, err := fsys.CopyContent(op.FS, u.Entry.Path, u.Dest, perm)
	if err != nil {
		return Result{Bytes: n}, errors.Errorf("copying %s to %s: %w", u.Entry.Path, u.Dest, err)
	}

	if op.opts.Preserve {
		// Create only applies perm to new files and is subject to the umask
		if err := op.FS.Chmod(u.Dest, perm); err != nil {
			return Result{Bytes: n}, errors.Errorf("setting mode on %s: %w", u.Dest, err)
		}
		if err := op.FS.Chtimes(u.Dest, info.ModTime(), info.ModTime()); err != nil {
			return Result{Bytes: n}, errors.Errorf("setting times on %s: %w", u.Dest, err)
		}
	}

	if op.opts.Verify {
		if err := fsys.VerifyCopy(op.FS, u.Dest, sum); err != nil {
			return Result{Bytes: n}, errors.Errorf("verifying %s: %w", u.Dest, err)
		}
		zerolog.Ctx(ctx).Trace().Str("dest", u.Dest).Uint64("xxhash", sum).Msg("verified copy")
	}

	return Result{Bytes: n}, nil
}

// 🔗 copySymlink recreates the link with the same target string
func (op *copyOperation) copySymlink(ctx context.Context, u Unit, info fs.FileInfo) (Result, error) {
	target, err := op.FS.Readlink(u.Entry.Path)
	if err != nil {
		return Result{}, errors.Errorf("reading link %s: %w", u.Entry.Path, err)
	}

	if err := op.clearDestination(u); err != nil {
		return Result{}, err
	}

	if err := op.FS.Symlink(target, u.Dest); err != nil {
		return Result{}, errors.Errorf("linking %s -> %s: %w", u.Dest, target, err)
	}

	if op.opts.Preserve {
		if err := op.FS.Lchtimes(u.Dest, info.ModTime(), info.ModTime()); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("dest", u.Dest).Msg("could not preserve link times")
		}
	}

	return Result{}, nil
}

// 📁 copyDir creates the destination directory. Owner write and search are
// always granted so children can be created inside it.
func (op *copyOperation) copyDir(ctx context.Context, u Unit, info fs.FileInfo) (Result, error) {
	existing, err := op.FS.Lstat(u.Dest)
	switch {
	case err == nil && existing.IsDir():
		zerolog.Ctx(ctx).Trace().Str("dest", u.Dest).Msg("destination directory exists")
		return Result{}, nil
	case err == nil:
		return Result{}, errors.WithStack(&DestinationConflictError{Path: u.Dest, Source: walk.KindDir, Found: walk.KindOf(existing.Mode())})
	case !errors.Is(err, fs.ErrNotExist):
		return Result{}, errors.Errorf("checking destination %s: %w", u.Dest, err)
	}

	perm := fs.FileMode(0o755)
	if op.opts.Preserve {
		perm = info.Mode().Perm() | 0o700
	}
	if err := op.FS.MkdirAll(u.Dest, perm); err != nil {
		return Result{}, errors.Errorf("creating directory %s: %w", u.Dest, err)
	}
	return Result{}, nil
}

// clearDestination removes a non-directory destination before it is
// replaced and rejects a directory in its place.
func (op *copyOperation) clearDestination(u Unit) error {
	existing, err := op.FS.Lstat(u.Dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return errors.Errorf("checking destination %s: %w", u.Dest, err)
	case existing.IsDir():
		return errors.WithStack(&DestinationConflictError{Path: u.Dest, Source: u.Entry.Kind, Found: walk.KindDir})
	case u.Entry.Kind == walk.KindFile && existing.Mode().IsRegular():
		// truncated in place by Create
		return nil
	}

	if err := op.FS.Remove(u.Dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("replacing %s: %w", u.Dest, err)
	}
	return nil
}
