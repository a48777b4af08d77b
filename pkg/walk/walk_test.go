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

package walk

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/parafs/pkg/fsys"
	"gitlab.com/tozd/go/errors"
)

// tree creates:
//
//	root/
//	  a.txt
//	  link -> sub
//	  sub/
//	    b.txt
//	    deep/
//	      c.txt
func tree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep", "c.txt"), []byte("c"), 0o644))
	require.NoError(t, os.Symlink("sub", filepath.Join(root, "link")))
	return root
}

type visit struct {
	rel   string
	kind  Kind
	depth int
	err   bool
}

func collect(w *Walker, root Entry, order Order) []visit {
	var out []visit
	for e, err := range w.Walk(root, order) {
		out = append(out, visit{rel: filepath.ToSlash(e.Rel()), kind: e.Kind, depth: e.Depth, err: err != nil})
	}
	return out
}

func TestWalkOrders(t *testing.T) {
	root := tree(t)

	tests := []struct {
		name  string
		order Order
		want  []visit
	}{
		{
			name:  "post_order_children_first",
			order: PostOrder,
			want: []visit{
				{rel: "a.txt", kind: KindFile, depth: 1},
				{rel: "link", kind: KindSymlink, depth: 1},
				{rel: "sub/b.txt", kind: KindFile, depth: 2},
				{rel: "sub/deep/c.txt", kind: KindFile, depth: 3},
				{rel: "sub/deep", kind: KindDir, depth: 2},
				{rel: "sub", kind: KindDir, depth: 1},
				{rel: ".", kind: KindDir, depth: 0},
			},
		},
		{
			name:  "pre_order_parents_first",
			order: PreOrder,
			want: []visit{
				{rel: ".", kind: KindDir, depth: 0},
				{rel: "a.txt", kind: KindFile, depth: 1},
				{rel: "link", kind: KindSymlink, depth: 1},
				{rel: "sub", kind: KindDir, depth: 1},
				{rel: "sub/b.txt", kind: KindFile, depth: 2},
				{rel: "sub/deep", kind: KindDir, depth: 2},
				{rel: "sub/deep/c.txt", kind: KindFile, depth: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(fsys.NewOS())
			got := collect(w, NewRoot(root, KindDir), tt.order)
			assert.Equal(t, tt.want, got, "walk order should match")
		})
	}
}

func TestWalkLeafRoots(t *testing.T) {
	root := tree(t)
	w := New(fsys.NewOS())

	got := collect(w, NewRoot(filepath.Join(root, "a.txt"), KindFile), PostOrder)
	assert.Equal(t, []visit{{rel: ".", kind: KindFile}}, got, "file root should yield only itself")

	got = collect(w, NewRoot(filepath.Join(root, "link"), KindSymlink), PreOrder)
	assert.Equal(t, []visit{{rel: ".", kind: KindSymlink}}, got, "symlink root should never be followed")
}

func TestWalkUnreadableDirectory(t *testing.T) {
	root := tree(t)
	ffs := fsys.NewFaultFS(fsys.NewOS())
	ffs.Fail(fsys.OpReadDir, filepath.Join(root, "sub"), syscall.EACCES)

	w := New(ffs)
	var failed []Entry
	var seen []string
	for e, err := range w.Walk(NewRoot(root, KindDir), PostOrder) {
		seen = append(seen, filepath.ToSlash(e.Rel()))
		if err != nil {
			failed = append(failed, e)
			var le *ListError
			require.True(t, errors.As(err, &le), "listing failures should be *ListError")
			assert.True(t, errors.Is(err, os.ErrPermission), "cause should be preserved")
		}
	}

	require.Len(t, failed, 1, "only the unreadable directory should fail")
	assert.Equal(t, "sub", failed[0].Rel())
	assert.Equal(t, []string{"a.txt", "link", "sub", "."}, seen, "siblings continue and the subtree is skipped")
}

func TestWalkStopsWhenConsumerStops(t *testing.T) {
	root := tree(t)
	w := New(fsys.NewOS())

	n := 0
	for range w.Walk(NewRoot(root, KindDir), PreOrder) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	assert.Len(t, collect(w, NewRoot(root, KindDir), PreOrder), 7, "a fresh call retraverses")
}

func TestWalkExclude(t *testing.T) {
	root := tree(t)
	w := New(fsys.NewOS(), WithExclude("deep", "*.txt"))

	got := collect(w, NewRoot(root, KindDir), PreOrder)
	assert.Equal(t, []visit{
		{rel: ".", kind: KindDir, depth: 0},
		{rel: "link", kind: KindSymlink, depth: 1},
		{rel: "sub", kind: KindDir, depth: 1},
	}, got, "excluded files and subtrees should not be yielded")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindFile, KindOf(0o644))
	assert.Equal(t, KindDir, KindOf(os.ModeDir|0o755))
	assert.Equal(t, KindSymlink, KindOf(os.ModeSymlink|0o777))
	assert.Equal(t, KindOther, KindOf(os.ModeNamedPipe))
	assert.Equal(t, "symlink", KindSymlink.String())
}
