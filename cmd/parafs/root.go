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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/cmd/parafs/opts"
	"github.com/walteh/parafs/pkg/config"
	"github.com/walteh/parafs/pkg/log"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile  string
	debug       bool
	quiet       bool
	concurrency int
	exclude     []string
	progress    bool
	journal     string
	metricsFile string
}

func newRootCmd(ro *opts.RootOpts, stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "parafs",
		Short: "Parallel bulk remove and copy",
		Long: `parafs removes or copies files and directory trees matching path
patterns, spreading the filesystem work across a bounded worker pool.

Partial failures never abort a run: every entry reports exactly once and the
summary explains what was left behind and why.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zlog := setupLogging(stderr, flags.debug)
			ctx := zlog.WithContext(cmd.Context())

			ro.Quiet = flags.quiet
			ro.Logger = log.New(stdout, zlog).WithQuiet(flags.quiet)
			ctx = log.NewContext(ctx, ro.Logger)

			cfg, err := loadConfig(ctx, cmd, flags)
			if err != nil {
				return err
			}
			ro.Config = cfg
			zlog.Debug().Str("config", cfg.String()).Str("location", cfg.Location()).Msg("configuration ready")

			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(cmd, flags)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .parafs.{yaml,yml,json,hcl} in the working directory)")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "only print warnings, failures and the summary")
	pf.IntVarP(&flags.concurrency, "concurrency", "j", 0, "worker pool size (default: 2 × CPUs)")
	pf.StringArrayVar(&flags.exclude, "exclude", nil, "skip entries matching this doublestar pattern (repeatable)")
	pf.BoolVar(&flags.progress, "progress", false, "render a live progress line (default: when stderr is a terminal)")
	pf.StringVar(&flags.journal, "journal", "", "append every outcome to this SQLite database")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
}

// setupLogging builds the diagnostic logger. Without --debug it is silent;
// user-facing output goes through pkg/log.
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(ctx context.Context, cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg := config.Default()

	path := flags.configFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		path, _ = config.Find(wd)
	}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	pf := cmd.Flags()
	if pf.Changed("concurrency") {
		cfg.Concurrency = flags.concurrency
	}
	if pf.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.exclude...)
	}
	if pf.Changed("progress") {
		cfg.Progress = &flags.progress
	}
	if pf.Changed("journal") {
		cfg.Journal = flags.journal
	}
	if pf.Changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}

	if cfg.Concurrency < 1 && pf.Changed("concurrency") {
		return nil, errors.Errorf("--concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}
