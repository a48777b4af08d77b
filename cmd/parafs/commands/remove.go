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

// NewRemoveCmd creates the remove command
func NewRemoveCmd(ro *opts.RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <path-or-glob>...",
		Aliases: []string{"rm"},
		Short:   "Remove files and directory trees in parallel",
		Long: `Remove deletes every path matched by the arguments.
It will:
1. Expand each argument (literal paths first, then doublestar globs)
2. Walk matched directories without following symlinks
3. Remove entries in parallel, each directory after its children
4. Report every failure and why surviving directories were kept`,
		Example: `  parafs rm 'build/**/*.o' tmp/
  parafs remove -f -j 64 node_modules`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ro.Config
			return execute(cmd.Context(), ro, invocation{
				command: "remove",
				args:    args,
				options: engine.Options{Force: force || cfg.Force},
				exec: func(ctx context.Context, e *engine.Engine) (*engine.Report, error) {
					return e.Remove(ctx, args)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "on permission denied, chmod the entry and retry once")
	return cmd
}
