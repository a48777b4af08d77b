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

package opts

import (
	"io"

	"github.com/walteh/parafs/pkg/config"
	"github.com/walteh/parafs/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config *config.Config
	Logger *log.Logger

	// Quiet suppresses informational console output and progress
	Quiet bool
	// Stderr receives progress rendering
	Stderr io.Writer
	// ProgressTTY is whether Stderr is a terminal, used when the config
	// leaves progress unset
	ProgressTTY bool
	// ExitCode is set by the command that ran
	ExitCode int
}

// ShowProgress reports whether the live progress line is rendered.
func (o *RootOpts) ShowProgress() bool {
	if o.Quiet {
		return false
	}
	if o.Config != nil && o.Config.Progress != nil {
		return *o.Config.Progress
	}
	return o.ProgressTTY
}
