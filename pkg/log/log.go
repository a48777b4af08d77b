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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/parafs/pkg/status"
)

// 📦 RunHeader describes a run for the console banner
type RunHeader struct {
	Command     string   // remove or copy
	Args        []string // Raw arguments as given
	Destination string   // Copy destination
	Workers     int      // Pool size
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	quiet     bool
	formatter status.Formatter
	mu        sync.Mutex
}

// 🏭 New creates a new logger that prints to console and mirrors every
// message to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.DefaultFormatter{},
	}
}

// WithQuiet suppresses informational console lines. Warnings, errors and
// failures are always printed.
func (l *Logger) WithQuiet(quiet bool) *Logger {
	l.quiet = quiet
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 StartRun prints the run banner
func (l *Logger) StartRun(ctx context.Context, h RunHeader) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Info().
		Str("command", h.Command).
		Strs("args", h.Args).
		Str("destination", h.Destination).
		Int("workers", h.Workers).
		Msg("starting run")

	if l.quiet {
		return
	}

	target := strings.Join(h.Args, " ")
	if h.Destination != "" {
		target += " → " + h.Destination
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(h.Command),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgCyan).Sprint(target))
}

// 📝 LogFailure prints one failed unit
func (l *Logger) LogFailure(ctx context.Context, f status.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, status.FormatFailureLine(f))

	l.zlog.Error().
		Str("path", f.Path).
		Str("dest", f.Dest).
		Str("op", f.Op.String()).
		Str("kind", f.Kind.String()).
		Strs("blockers", f.Blockers).
		Err(f.Err).
		Msg("unit failed")
}

// 📝 LogSummary prints warnings, notices, failures and the final totals
func (l *Logger) LogSummary(ctx context.Context, s status.Summary) {
	for _, w := range s.Warnings {
		l.Warning(w.Error())
	}
	for _, n := range s.Notices {
		l.Warning(n)
	}
	for _, f := range s.Failures {
		l.LogFailure(ctx, f)
	}

	line := l.formatter.FormatSummary(s)
	switch {
	case s.Canceled:
		l.Warning(line)
	case !s.OK():
		l.Error(line)
	default:
		l.Success(line)
	}
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quiet {
		return
	}
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Info().Msg(msg)
	if l.quiet {
		return
	}
	name := color.New(color.Bold, color.FgCyan).Sprint("parafs")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Info().Msg(msg)
	if l.quiet {
		return
	}
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Info().Msg(msg)
	if l.quiet {
		return
	}
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
