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

package status

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/walteh/parafs/pkg/operation"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0 B"},
		{in: 1023, want: "1023 B"},
		{in: 1536, want: "1.50 KiB"},
		{in: 5 * 1024 * 1024, want: "5.00 MiB"},
		{in: 3 * 1024 * 1024 * 1024, want: "3.00 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "1.50 s", FormatElapsed(1500*time.Millisecond))
	assert.Equal(t, "2:05", FormatElapsed(2*time.Minute+5*time.Second))
	assert.Equal(t, "1:02:03", FormatElapsed(time.Hour+2*time.Minute+3*time.Second))
}

func TestDefaultFormatter(t *testing.T) {
	f := DefaultFormatter{}

	assert.Equal(t,
		"0 files, 0 dirs, total size: 0 B, 0.00 items/s, 0 B/s, elapsed: 0.00 s",
		f.FormatProgress(Snapshot{}), "no current path and no division by zero")

	assert.Equal(t,
		"[not_empty] boom (blocked by d/x, d/y)",
		f.FormatFailure(Failure{Kind: operation.KindNotEmpty, Err: errString("boom"), Blockers: []string{"d/x", "d/y"}}))

	assert.Equal(t,
		"4 attempted, 3 succeeded, 1 failed, 10 B in 1.00 s, 1 warnings (canceled)",
		f.FormatSummary(Summary{Attempted: 4, Succeeded: 3, Failed: 1, Bytes: 10, Elapsed: time.Second, Warnings: []error{errString("w")}, Canceled: true}))
}

func TestFormatFailureLine(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	line := FormatFailureLine(Failure{Path: "a/b", Op: operation.OpRemove, Kind: operation.KindNotEmpty, Err: errString("not empty"), Blockers: []string{"a/b/c"}})
	assert.Contains(t, line, "    ⟳ a/b")
	assert.Contains(t, line, "remove")
	assert.Contains(t, line, "not_empty")
	assert.Contains(t, line, "(blocked by a/b/c)")
}

type errString string

func (e errString) Error() string { return string(e) }
