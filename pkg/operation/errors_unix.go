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

//go:build unix

package operation

import (
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

func classifyErrno(err error) Kind {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return KindOther
	}
	switch errno {
	case unix.EACCES, unix.EPERM, unix.EROFS:
		return KindAccess
	case unix.ENOENT:
		return KindNotFound
	case unix.ENOSPC, unix.EMFILE, unix.ENFILE, unix.EDQUOT, unix.ENOMEM:
		return KindResource
	case unix.ENOTEMPTY:
		return KindNotEmpty
	case unix.EXDEV:
		return KindCrossDevice
	case unix.EISDIR, unix.ENOTDIR, unix.EEXIST:
		return KindConflict
	default:
		return KindOther
	}
}

func isExhaustion(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == unix.EMFILE || errno == unix.ENFILE || errno == unix.ENOMEM
}
