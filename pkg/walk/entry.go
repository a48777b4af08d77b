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
	"io/fs"
	"path/filepath"
)

// 📂 Kind is the type of a filesystem entry as seen without following links.
type Kind uint8

const (
	KindFile    Kind = iota // Regular file
	KindSymlink             // Symbolic link, never followed
	KindDir                 // Directory
	KindOther               // Device, fifo, socket or anything else
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindDir:
		return "dir"
	default:
		return "other"
	}
}

// KindOf classifies a mode returned by Lstat or DirEntry.Type.
func KindOf(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// 📄 Entry is one filesystem object discovered under a root.
type Entry struct {
	Path  string // Path as discovered, rooted at Root
	Root  string // The expansion root this entry was found under
	Kind  Kind   // Type without following symlinks
	Depth int    // 0 for the root itself
}

// NewRoot builds the depth-0 entry for a root path.
func NewRoot(path string, kind Kind) Entry {
	path = filepath.Clean(path)
	return Entry{Path: path, Root: path, Kind: kind}
}

// Rel returns the path relative to its root ("." for the root).
func (e Entry) Rel() string {
	rel, err := filepath.Rel(e.Root, e.Path)
	if err != nil {
		return filepath.Base(e.Path)
	}
	return rel
}

// IsDir reports whether the entry is a real directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

func (e Entry) child(name string, kind Kind) Entry {
	return Entry{
		Path:  filepath.Join(e.Path, name),
		Root:  e.Root,
		Kind:  kind,
		Depth: e.Depth + 1,
	}
}
