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

	"github.com/rs/zerolog"
	"github.com/walteh/parafs/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

// 🧹 NewRemoveOperation creates the executor for remove units
func NewRemoveOperation(opts Options) Executor {
	return &removeOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 🧹 removeOperation unlinks files and removes emptied directories
type removeOperation struct {
	BaseOperation
}

// 🏃 Execute removes one entry. Directories are only submitted after their
// children reported, so a directory that still has entries fails as not empty.
func (op *removeOperation) Execute(ctx context.Context, u Unit) (Result, error) {
	path := u.Entry.Path

	var res Result
	if u.Entry.Kind == walk.KindFile {
		if info, err := op.FS.Lstat(path); err == nil {
			res.Bytes = info.Size()
		}
	}

	err := op.FS.Remove(path)
	if err == nil {
		return res, nil
	}

	// chmod follows symlinks: links are never retried
	if op.opts.Force && u.Entry.Kind != walk.KindSymlink && Classify(err) == KindAccess {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("permission denied, retrying after chmod")
		if cerr := op.FS.Chmod(path, 0o777); cerr != nil {
			return Result{}, errors.Errorf("removing %s: %w (chmod: %v)", path, err, cerr)
		}
		if err = op.FS.Remove(path); err == nil {
			return res, nil
		}
	}

	return Result{}, errors.Errorf("removing %s %s: %w", u.Entry.Kind, path, err)
}
