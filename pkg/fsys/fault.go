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

package fsys

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// 🔧 Op names a FS method for fault injection.
type Op string

const (
	OpLstat    Op = "lstat"
	OpStat     Op = "stat"
	OpReadDir  Op = "readdir"
	OpReadlink Op = "readlink"
	OpRemove   Op = "remove"
	OpChmod    Op = "chmod"
	OpMkdirAll Op = "mkdirall"
	OpSymlink  Op = "symlink"
	OpOpen     Op = "open"
	OpCreate   Op = "create"
	OpChtimes  Op = "chtimes"
	OpLchtimes Op = "lchtimes"
)

// Call records one FS method invocation.
type Call struct {
	Op   Op
	Path string
}

type fault struct {
	err  error
	once bool
}

// 🧪 FaultFS wraps another FS, records every call and returns injected
// errors for chosen (op, path) pairs. Injected errors are wrapped in
// *os.PathError so callers classify them like real syscall failures.
type FaultFS struct {
	base FS

	mu     sync.Mutex
	faults map[Call]fault
	calls  []Call
}

var _ FS = (*FaultFS)(nil)

// NewFaultFS wraps base.
func NewFaultFS(base FS) *FaultFS {
	return &FaultFS{
		base:   base,
		faults: make(map[Call]fault),
	}
}

// Fail makes every op on path return err.
func (f *FaultFS) Fail(op Op, path string, err error) {
	f.set(op, path, fault{err: err})
}

// FailOnce makes the next op on path return err.
func (f *FaultFS) FailOnce(op Op, path string, err error) {
	f.set(op, path, fault{err: err, once: true})
}

func (f *FaultFS) set(op Op, path string, ft fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[Call{Op: op, Path: filepath.Clean(path)}] = ft
}

// Calls returns a copy of the recorded calls in invocation order.
func (f *FaultFS) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many times op was invoked on path.
func (f *FaultFS) Count(op Op, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	path = filepath.Clean(path)
	n := 0
	for _, c := range f.calls {
		if c.Op == op && c.Path == path {
			n++
		}
	}
	return n
}

func (f *FaultFS) check(op Op, path string) error {
	key := Call{Op: op, Path: filepath.Clean(path)}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	ft, ok := f.faults[key]
	if !ok {
		return nil
	}
	if ft.once {
		delete(f.faults, key)
	}
	return &os.PathError{Op: string(op), Path: path, Err: ft.err}
}

func (f *FaultFS) Lstat(name string) (fs.FileInfo, error) {
	if err := f.check(OpLstat, name); err != nil {
		return nil, err
	}
	return f.base.Lstat(name)
}

func (f *FaultFS) Stat(name string) (fs.FileInfo, error) {
	if err := f.check(OpStat, name); err != nil {
		return nil, err
	}
	return f.base.Stat(name)
}

func (f *FaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check(OpReadDir, name); err != nil {
		return nil, err
	}
	return f.base.ReadDir(name)
}

func (f *FaultFS) Readlink(name string) (string, error) {
	if err := f.check(OpReadlink, name); err != nil {
		return "", err
	}
	return f.base.Readlink(name)
}

func (f *FaultFS) Remove(name string) error {
	if err := f.check(OpRemove, name); err != nil {
		return err
	}
	return f.base.Remove(name)
}

func (f *FaultFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check(OpChmod, name); err != nil {
		return err
	}
	return f.base.Chmod(name, mode)
}

func (f *FaultFS) MkdirAll(name string, perm fs.FileMode) error {
	if err := f.check(OpMkdirAll, name); err != nil {
		return err
	}
	return f.base.MkdirAll(name, perm)
}

func (f *FaultFS) Symlink(oldname, newname string) error {
	if err := f.check(OpSymlink, newname); err != nil {
		return err
	}
	return f.base.Symlink(oldname, newname)
}

func (f *FaultFS) Open(name string) (io.ReadCloser, error) {
	if err := f.check(OpOpen, name); err != nil {
		return nil, err
	}
	return f.base.Open(name)
}

func (f *FaultFS) Create(name string, perm fs.FileMode) (io.WriteCloser, error) {
	if err := f.check(OpCreate, name); err != nil {
		return nil, err
	}
	return f.base.Create(name, perm)
}

func (f *FaultFS) Chtimes(name string, atime, mtime time.Time) error {
	if err := f.check(OpChtimes, name); err != nil {
		return err
	}
	return f.base.Chtimes(name, atime, mtime)
}

func (f *FaultFS) Lchtimes(name string, atime, mtime time.Time) error {
	if err := f.check(OpLchtimes, name); err != nil {
		return err
	}
	return f.base.Lchtimes(name, atime, mtime)
}
