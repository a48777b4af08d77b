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

package operation_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

func copyUnit(src string, kind walk.Kind, dest string) operation.Unit {
	return operation.Unit{Entry: walk.NewRoot(src, kind), Op: operation.OpCopy, Dest: dest}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\necho hi\n"), 0o750))
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dest := filepath.Join(dir, "dest.sh")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer than the new one"), 0o600))

	op := operation.NewCopyOperation(operation.Options{Preserve: true, Verify: true})
	res, err := op.Execute(testContext(t), copyUnit(src, walk.KindFile, dest))
	require.NoError(t, err)
	assert.Equal(t, int64(18), res.Bytes)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(got), "existing file is overwritten")

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm(), "permissions preserved")
	assert.True(t, info.ModTime().Equal(mtime), "mtime preserved")
}

func TestCopyFileWithoutPreserve(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	old := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, old, old))

	ffs := fsys.NewFaultFS(fsys.NewOS())
	op := operation.NewCopyOperation(operation.Options{FS: ffs})
	_, err := op.Execute(testContext(t), copyUnit(src, walk.KindFile, filepath.Join(dir, "dst")))
	require.NoError(t, err)

	assert.Zero(t, ffs.Count(fsys.OpChtimes, filepath.Join(dir, "dst")))
	info, err := os.Stat(filepath.Join(dir, "dst"))
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(old))
}

func TestCopySymlink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink("../some/where", src))

	dest := filepath.Join(dir, "copy")
	require.NoError(t, os.WriteFile(dest, []byte("in the way"), 0o644))

	op := operation.NewCopyOperation(operation.Options{Preserve: true})
	_, err := op.Execute(testContext(t), copyUnit(src, walk.KindSymlink, dest))
	require.NoError(t, err)

	target, err := os.Readlink(dest)
	require.NoError(t, err)
	assert.Equal(t, "../some/where", target, "link target string copied verbatim")
}

func TestCopyDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o500))
	t.Cleanup(func() { os.Chmod(src, 0o755) })

	op := operation.NewCopyOperation(operation.Options{Preserve: true})

	dest := filepath.Join(dir, "a", "b", "dest")
	_, err := op.Execute(testContext(t), copyUnit(src, walk.KindDir, dest))
	require.NoError(t, err, "missing parents are created")

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm()&0o700, "owner can always create children")

	_, err = op.Execute(testContext(t), copyUnit(src, walk.KindDir, dest))
	assert.NoError(t, err, "existing directory is accepted")
}

func TestCopyDestinationConflicts(t *testing.T) {
	tests := []struct {
		name  string
		kind  walk.Kind
		setup func(t *testing.T, src, dest string)
	}{
		{
			name: "file_onto_directory",
			kind: walk.KindFile,
			setup: func(t *testing.T, src, dest string) {
				require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
				require.NoError(t, os.Mkdir(dest, 0o755))
			},
		},
		{
			name: "directory_onto_file",
			kind: walk.KindDir,
			setup: func(t *testing.T, src, dest string) {
				require.NoError(t, os.Mkdir(src, 0o755))
				require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))
			},
		},
		{
			name: "symlink_onto_directory",
			kind: walk.KindSymlink,
			setup: func(t *testing.T, src, dest string) {
				require.NoError(t, os.Symlink("x", src))
				require.NoError(t, os.Mkdir(dest, 0o755))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "dest")
			tt.setup(t, src, dest)

			op := operation.NewCopyOperation(operation.Options{})
			_, err := op.Execute(testContext(t), copyUnit(src, tt.kind, dest))
			require.Error(t, err)

			var conflict *operation.DestinationConflictError
			require.True(t, errors.As(err, &conflict), "should be a DestinationConflictError, got %v", err)
			assert.Equal(t, dest, conflict.Path)
			assert.Equal(t, tt.kind, conflict.Source)
			assert.Equal(t, operation.KindConflict, operation.Classify(err))
		})
	}
}

func TestCopyFailures(t *testing.T) {
	t.Run("disk_full", func(t *testing.T) {
		dir := t.TempDir()
		src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "dest")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

		ffs := fsys.NewFaultFS(fsys.NewOS())
		ffs.Fail(fsys.OpCreate, dest, syscall.ENOSPC)
		op := operation.NewCopyOperation(operation.Options{FS: ffs})
		_, err := op.Execute(testContext(t), copyUnit(src, walk.KindFile, dest))
		assert.Equal(t, operation.KindResource, operation.Classify(err))
	})

	t.Run("missing_destination", func(t *testing.T) {
		op := operation.NewCopyOperation(operation.Options{})
		_, err := op.Execute(testContext(t), operation.Unit{Entry: walk.NewRoot("x", walk.KindFile), Op: operation.OpCopy})
		assert.Error(t, err)
	})
}
