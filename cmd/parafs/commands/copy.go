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

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/walteh/parafs/cmd/parafs/opts"
	"github.com/walteh/parafs/pkg/engine"
)

// NewCopyCmd creates the copy command
func NewCopyCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		verify     bool
		noPreserve bool
	)

	cmd := &cobra.Command{
		Use:     "copy <path-or-glob>... <destination>",
		Aliases: []string{"cp"},
		Short:   "Copy files and directory trees in parallel",
		Long: `Copy recreates every path matched by the sources under the destination.
If the destination is an existing directory each source is copied into it
by base name. If it does not exist, the single source is copied as the
destination. Directories are created before their contents; when a
directory cannot be created its subtree is skipped and reported.`,
		Example: `  parafs cp src/ backup/src
  parafs copy --verify 'logs/*.gz' archive/`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ro.Config
			sources, dest := args[:len(args)-1], args[len(args)-1]
			return execute(cmd.Context(), ro, invocation{
				command:     "copy",
				args:        sources,
				destination: dest,
				options: engine.Options{
					Verify:   verify || cfg.Verify,
					Preserve: cfg.ShouldPreserve() && !noPreserve,
				},
				exec: func(ctx context.Context, e *engine.Engine) (*engine.Report, error) {
					return e.Copy(ctx, sources, dest)
				},
			})
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "re-read copied files and compare xxhash64 digests")
	cmd.Flags().BoolVar(&noPreserve, "no-preserve", false, "do not copy permission bits and modification times")
	return cmd
}
