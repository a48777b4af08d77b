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
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/parafs/pkg/operation"
)

const (
	entryIndent = 4  // spaces to indent failure entries
	nameWidth   = 35 // Base width for the path
	opWidth     = 8  // Width for the operation
	kindWidth   = 13 // Width for the failure kind
)

// FormatFailureLine formats a failure as an aligned, colored console line
func FormatFailureLine(f Failure) string {
	var prefix string
	switch f.Kind {
	case operation.KindCanceled, operation.KindAbandoned:
		prefix = color.HiBlackString("-")
	case operation.KindNotEmpty:
		prefix = color.YellowString("⟳")
	default:
		prefix = color.RedString("✗")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, f.Path)
	opPart := fmt.Sprintf("%-*s", opWidth, f.Op)
	kindPart := color.YellowString("%-*s", kindWidth, f.Kind)

	line := fmt.Sprintf("%s%s %s %s %s %v",
		strings.Repeat(" ", entryIndent),
		prefix,
		namePart,
		opPart,
		kindPart,
		f.Err,
	)
	if len(f.Blockers) > 0 {
		line += color.HiBlackString(" (blocked by %s)", strings.Join(f.Blockers, ", "))
	}
	return line
}
