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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/walk"
)

func TestRemoveOperation(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) (string, walk.Kind)
		wantKind operation.Kind
	}{
		{
			name: "file",
			setup: func(t *testing.T, dir string) (string, walk.Kind) {
				p := filepath.Join(dir, "a.txt")
				require.NoError(t, os.WriteFile(p, []byte("a"), 0o644))
				return p, walk.KindFile
			},
		},
		{
			name: "symlink_not_target",
			setup: func(t *testing.T, dir string) (string, walk.Kind) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "target"), []byte("t"), 0o644))
				p := filepath.Join(dir, "link")
				require.NoError(t, os.Symlink("target", p))
				return p, walk.KindSymlink
			},
		},
		{
			name: "empty_dir",
			setup: func(t *testing.T, dir string) (string, walk.Kind) {
				p := filepath.Join(dir, "empty")
				require.NoError(t, os.Mkdir(p, 0o755))
				return p, walk.KindDir
			},
		},
		{
			name: "non_empty_dir_fails",
			setup: func(t *testing.T, dir string) (string, walk.Kind) {
				p := filepath.Join(dir, "full")
				require.NoError(t, os.MkdirAll(filepath.Join(p, "child"), 0o755))
				return p, walk.KindDir
			},
			wantKind: operation.KindNotEmpty,
		},
		{
			name: "vanished_entry",
			setup: func(t *testing.T, dir string) (string, walk.Kind) {
				return filepath.Join(dir, "gone"), walk.KindFile
			},
			wantKind: operation.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			dir := t.TempDir()
			path, kind := tt.setup(t, dir)

			op := operation.NewRemoveOperation(operation.Options{})
			_, err := op.Execute(ctx, operation.Unit{Entry: walk.NewRoot(path, kind), Op: operation.OpRemove})

			if tt.wantKind != operation.KindNone {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, operation.Classify(err))
				return
			}
			require.NoError(t, err)
			_, err = os.Lstat(path)
			assert.True(t, os.IsNotExist(err), "entry should be gone")
		})
	}

	t.Run("symlink_target_survives", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "target"), []byte("t"), 0o644))
		require.NoError(t, os.Symlink("target", filepath.Join(dir, "link")))

		op := operation.NewRemoveOperation(operation.Options{})
		_, err := op.Execute(testContext(t), operation.Unit{Entry: walk.NewRoot(filepath.Join(dir, "link"), walk.KindSymlink)})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "target"))
	})
}

func TestRemoveForce(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		kind      walk.Kind
		wantErr   bool
		wantChmod int
	}{
		{name: "force_retries_after_chmod", force: true, kind: walk.KindFile, wantChmod: 1},
		{name: "without_force_fails", force: false, kind: walk.KindFile, wantErr: true},
		{name: "force_never_chmods_symlinks", force: true, kind: walk.KindSymlink, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "entry")
			if tt.kind == walk.KindSymlink {
				require.NoError(t, os.Symlink("nowhere", path))
			} else {
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o444))
			}

			ffs := fsys.NewFaultFS(fsys.NewOS())
			ffs.FailOnce(fsys.OpRemove, path, syscall.EACCES)

			op := operation.NewRemoveOperation(operation.Options{FS: ffs, Force: tt.force})
			_, err := op.Execute(testContext(t), operation.Unit{Entry: walk.NewRoot(path, tt.kind)})

			assert.Equal(t, tt.wantChmod, ffs.Count(fsys.OpChmod, path))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, operation.KindAccess, operation.Classify(err))
				assert.Equal(t, 1, ffs.Count(fsys.OpRemove, path), "no retry")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, ffs.Count(fsys.OpRemove, path), "exactly one retry")
			assert.NoFileExists(t, path)
		})
	}
}
