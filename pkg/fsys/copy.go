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

	"github.com/cespare/xxhash/v2"
	"gitlab.com/tozd/go/errors"
)

// ErrChecksumMismatch is returned by VerifyCopy when the destination content
// differs from what was written.
var ErrChecksumMismatch = errors.Base("checksum mismatch")

// 📋 CopyContent streams src into dst (created or truncated with perm) and
// returns the number of bytes written plus the xxhash64 of the stream.
func CopyContent(fsys FS, src, dst string, perm fs.FileMode) (int64, uint64, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return 0, 0, errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := fsys.Create(dst, perm)
	if err != nil {
		return 0, 0, errors.Errorf("creating destination: %w", err)
	}

	digest := xxhash.New()
	n, err := io.Copy(out, io.TeeReader(in, digest))
	if err != nil {
		out.Close()
		return n, 0, errors.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		return n, 0, errors.Errorf("closing destination: %w", err)
	}

	return n, digest.Sum64(), nil
}

// 🔍 HashFile returns the xxhash64 of the content at path.
func HashFile(fsys FS, path string) (uint64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, errors.Errorf("reading %s: %w", path, err)
	}
	return digest.Sum64(), nil
}

// VerifyCopy re-reads dst and compares it with the digest of what was written.
func VerifyCopy(fsys FS, dst string, want uint64) error {
	got, err := HashFile(fsys, dst)
	if err != nil {
		return err
	}
	if got != want {
		return errors.Errorf("%s: %w (wrote %016x, read %016x)", dst, ErrChecksumMismatch, want, got)
	}
	return nil
}
