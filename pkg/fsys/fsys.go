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

// Package fsys is the filesystem surface parafs reads and mutates through.
//
// Every syscall-level action the walker and the operations perform goes
// through FS so tests can inject faults (permission denied, disk full,
// vanished entries) without depending on the privileges of the test runner.
package fsys

import (
	"io"
	"io/fs"
	"os"
	"time"
)

// 💾 FS abstracts the per-entry filesystem calls used by parafs.
// Implementations must be safe for concurrent use.
type FS interface {
	// Lstat returns file info without following symlinks.
	Lstat(name string) (fs.FileInfo, error)
	// Stat returns file info, following symlinks.
	Stat(name string) (fs.FileInfo, error)
	// ReadDir lists a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)
	// Readlink returns the target string of a symlink.
	Readlink(name string) (string, error)

	// Remove unlinks a file or symlink, or removes an empty directory.
	Remove(name string) error
	// Chmod changes the mode of name. It follows symlinks.
	Chmod(name string, mode fs.FileMode) error
	// MkdirAll creates name and any missing parents.
	MkdirAll(name string, perm fs.FileMode) error
	// Symlink creates newname as a symlink to oldname.
	Symlink(oldname, newname string) error

	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)
	// Create opens name for writing, truncating it or creating it with perm.
	Create(name string, perm fs.FileMode) (io.WriteCloser, error)

	// Chtimes sets access and modification times, following symlinks.
	Chtimes(name string, atime, mtime time.Time) error
	// Lchtimes sets access and modification times of a symlink itself.
	Lchtimes(name string, atime, mtime time.Time) error
}

// 🖥️ OS implements FS with the os package.
type OS struct{}

var _ FS = OS{}

// NewOS returns the operating system filesystem.
func NewOS() OS {
	return OS{}
}

func (OS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (OS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (OS) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

func (OS) Remove(name string) error {
	return os.Remove(name)
}

func (OS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (OS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(name, perm)
}

func (OS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (OS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (OS) Create(name string, perm fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

func (OS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

func (OS) Lchtimes(name string, atime, mtime time.Time) error {
	return lchtimes(name, atime, mtime)
}
