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

	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/walk"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrAbandoned is reported for copy units whose prerequisite failed.
	ErrAbandoned = errors.Base("abandoned: prerequisite failed")
	// ErrCanceled is reported for accepted units that never ran because the
	// run was canceled.
	ErrCanceled = errors.Base("canceled before execution")
	// ErrDraining is returned by Submit once cancellation has begun.
	ErrDraining = errors.Base("runner is draining")
	// ErrClosed is returned by Submit after Wait.
	ErrClosed = errors.Base("runner is closed")
	// ErrUnsupported is reported when copying devices, fifos and sockets.
	ErrUnsupported = errors.Base("unsupported entry type")
)

// 💥 DestinationConflictError reports a copy destination whose type does not
// match the source (directory versus non-directory).
type DestinationConflictError struct {
	Path   string
	Source walk.Kind
	Found  walk.Kind
}

func (e *DestinationConflictError) Error() string {
	return "destination " + e.Path + " is a " + e.Found.String() + " but source is a " + e.Source.String()
}

// 🏷️ Kind is the failure category of an Outcome.
type Kind uint8

const (
	KindNone        Kind = iota // Success
	KindAccess                  // EACCES, EPERM
	KindNotFound                // Entry vanished
	KindConflict                // Destination type mismatch
	KindResource                // ENOSPC, EMFILE, ENFILE, EDQUOT, ENOMEM
	KindNotEmpty                // Directory still has children
	KindCrossDevice             // EXDEV
	KindWalk                    // Directory could not be listed
	KindAbandoned               // Prerequisite failed
	KindCanceled                // Run canceled before execution
	KindUnsupported             // Entry type cannot be copied
	KindVerify                  // Copied content did not verify
	KindOther
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAccess:
		return "access"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindResource:
		return "resource"
	case KindNotEmpty:
		return "not_empty"
	case KindCrossDevice:
		return "cross_device"
	case KindWalk:
		return "walk"
	case KindAbandoned:
		return "abandoned"
	case KindCanceled:
		return "canceled"
	case KindUnsupported:
		return "unsupported"
	case KindVerify:
		return "verify"
	default:
		return "other"
	}
}

// 🔍 Classify maps an Outcome error to its failure category.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var conflict *DestinationConflictError
	var list *walk.ListError
	switch {
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrAbandoned):
		return KindAbandoned
	case errors.As(err, &conflict):
		return KindConflict
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, fsys.ErrChecksumMismatch):
		return KindVerify
	case errors.As(err, &list):
		return KindWalk
	}

	if k := classifyErrno(err); k != KindOther {
		return k
	}

	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindAccess
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	default:
		return KindOther
	}
}

// IsResourceExhaustion reports whether err means the process ran out of file
// descriptors or memory, the failures that shrink the runner's limit.
func IsResourceExhaustion(err error) bool {
	return err != nil && isExhaustion(err)
}
