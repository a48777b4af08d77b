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

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/parafs/cmd/parafs/commands"
	"github.com/walteh/parafs/cmd/parafs/opts"
	"github.com/walteh/parafs/pkg/log"
	"github.com/walteh/parafs/pkg/status"
)

func main() {
	// SIGINT and SIGTERM drain the run instead of killing it
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pterm.SetDefaultOutput(os.Stderr)
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, tty)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, tty bool) int {
	ro := &opts.RootOpts{Stderr: stderr, ProgressTTY: tty}

	rootCmd := newRootCmd(ro, stdout, stderr)
	rootCmd.AddCommand(
		commands.NewRemoveCmd(ro),
		commands.NewCopyCmd(ro),
		newVersionCmd(stdout),
	)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := ro.Logger
		if logger == nil {
			logger = log.New(stderr, zerolog.Nop())
		}
		logger.Error(err.Error())
		return status.ExitFailure
	}
	return ro.ExitCode
}
