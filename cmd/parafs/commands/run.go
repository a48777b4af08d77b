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
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/cmd/parafs/opts"
	"github.com/walteh/parafs/pkg/engine"
	"github.com/walteh/parafs/pkg/journal"
	"github.com/walteh/parafs/pkg/log"
	"github.com/walteh/parafs/pkg/metrics"
	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/status"
)

const progressInterval = 200 * time.Millisecond

// invocation describes one command run for the shared pipeline.
type invocation struct {
	command     string
	args        []string
	destination string
	options     engine.Options
	exec        func(ctx context.Context, e *engine.Engine) (*engine.Report, error)
}

// execute wires the optional journal, metrics and progress outputs around
// one engine run, prints the summary and stores the exit code.
func execute(ctx context.Context, ro *opts.RootOpts, inv invocation) error {
	logger := log.FromContext(ctx)
	zlog := zerolog.Ctx(ctx)
	cfg := ro.Config

	options := inv.options
	options.Concurrency = cfg.Concurrency
	options.Exclude = cfg.Exclude

	var sinks operation.Sinks

	var jr *journal.Journal
	if cfg.Journal != "" {
		var err error
		jr, err = journal.Open(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer jr.Close()

		argv := inv.args
		if inv.destination != "" {
			argv = append(append([]string(nil), argv...), inv.destination)
		}
		id, err := jr.Begin(ctx, inv.command, argv)
		if err != nil {
			return errors.Errorf("starting journal run: %w", err)
		}
		zlog.Debug().Int64("run_id", id).Str("journal", cfg.Journal).Msg("journaling outcomes")
		sinks = append(sinks, jr)
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
		m.SetLimit(int64(cfg.Concurrency))
		sinks = append(sinks, m)
		options.Observer = m
	}

	var progress *status.Progress
	if ro.ShowProgress() {
		progress = status.NewProgress(nil)
		sinks = append(sinks, progress)
	}

	options.Sinks = append(options.Sinks, sinks...)
	e := engine.New(options)

	logger.StartRun(ctx, log.RunHeader{
		Command:     inv.command,
		Args:        inv.args,
		Destination: inv.destination,
		Workers:     cfg.Concurrency,
	})

	if progress != nil {
		if err := progress.Start(progressInterval); err != nil {
			zlog.Warn().Err(err).Msg("progress disabled")
			progress = nil
		}
	}

	report, err := inv.exec(ctx, e)

	if progress != nil {
		if perr := progress.Stop(); perr != nil {
			zlog.Warn().Err(perr).Msg("stopping progress")
		}
	}
	if err != nil {
		return errors.Errorf("%s: %w", inv.command, err)
	}

	summary := report.Summary

	if m != nil {
		m.SetLimit(int64(report.Stats.Limit))
		if err := m.WriteFile(cfg.MetricsFile); err != nil {
			logger.Warning(err.Error())
		}
	}
	if jr != nil {
		if err := jr.Finish(context.WithoutCancel(ctx), summary); err != nil {
			logger.Warning(err.Error())
		}
	}

	logger.LogSummary(ctx, summary)
	ro.ExitCode = summary.ExitCode()
	return nil
}
