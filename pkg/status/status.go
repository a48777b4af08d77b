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
	"path/filepath"
	"sync"
	"time"

	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// Exit codes returned by Summary.ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNoMatch  = 2
	ExitCanceled = 130
)

// ❌ Failure is one failed unit.
type Failure struct {
	Path     string         // Entry path
	Dest     string         // Copy destination, empty for remove
	Op       operation.Op   // Action that failed
	Kind     operation.Kind // Failure category
	Err      error          // Underlying error
	Blockers []string       // Failed direct children of a directory left not empty
}

// 📊 Summary is the finalized result of a run.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Bytes     int64
	Elapsed   time.Duration
	Canceled  bool

	Failures []Failure        // In the order outcomes were received
	Warnings []error          // Non-fatal problems with arguments
	Notices  []string         // Informational messages that do not affect the exit code
	ByKind   map[operation.Kind]int
}

// OK reports whether every unit succeeded and the run was not canceled.
func (s Summary) OK() bool {
	return s.Failed == 0 && !s.Canceled
}

// NoMatches returns the arguments that matched nothing.
func (s Summary) NoMatches() []string {
	var out []string
	for _, w := range s.Warnings {
		var nm *pattern.NoMatchError
		if errors.As(w, &nm) {
			out = append(out, nm.Arg)
		}
	}
	return out
}

// ExitCode maps the summary to the process exit status.
func (s Summary) ExitCode() int {
	switch {
	case s.Canceled:
		return ExitCanceled
	case s.Failed > 0:
		return ExitFailure
	case len(s.Warnings) > 0:
		return ExitNoMatch
	default:
		return ExitOK
	}
}

// 📥 Aggregator is the operation.Sink that builds the Summary. It is safe
// for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	start    time.Time
	now      func() time.Time
	summary  Summary
	canceled bool
}

var _ operation.Sink = (*Aggregator)(nil)

// 🏭 NewAggregator creates an aggregator; elapsed time is measured from now.
func NewAggregator() *Aggregator {
	return &Aggregator{
		start:   time.Now(),
		now:     time.Now,
		summary: Summary{ByKind: map[operation.Kind]int{}},
	}
}

// Record counts one outcome.
func (a *Aggregator) Record(o operation.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Attempted++
	a.summary.Bytes += o.Bytes
	if o.OK() {
		a.summary.Succeeded++
		return
	}

	kind := operation.Classify(o.Err)
	a.summary.Failed++
	a.summary.ByKind[kind]++
	a.summary.Failures = append(a.summary.Failures, Failure{
		Path: o.Unit.Entry.Path,
		Dest: o.Unit.Dest,
		Op:   o.Unit.Op,
		Kind: kind,
		Err:  o.Err,
	})
}

// Warn records a non-fatal problem, such as a pattern.NoMatchError.
func (a *Aggregator) Warn(err error) {
	if err == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.Warnings = append(a.summary.Warnings, err)
}

// Notice records an informational message shown with the summary.
func (a *Aggregator) Notice(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.Notices = append(a.summary.Notices, msg)
}

// MarkCanceled flags the run as interrupted.
func (a *Aggregator) MarkCanceled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.canceled = true
}

// Summary returns a finalized copy of the counters. It may be called more
// than once; each call reflects the outcomes recorded so far.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.summary
	s.Canceled = a.canceled
	s.Elapsed = a.now().Sub(a.start)
	s.Failures = append([]Failure(nil), a.summary.Failures...)
	s.Warnings = append([]error(nil), a.summary.Warnings...)
	s.Notices = append([]string(nil), a.summary.Notices...)
	s.ByKind = make(map[operation.Kind]int, len(a.summary.ByKind))
	for k, v := range a.summary.ByKind {
		s.ByKind[k] = v
	}

	explain(s.Failures)
	return s
}

// explain links each not-empty directory failure to the failed entries
// directly inside it.
func explain(failures []Failure) {
	children := make(map[string][]string)
	for _, f := range failures {
		parent := filepath.Dir(f.Path)
		children[parent] = append(children[parent], f.Path)
	}
	for i := range failures {
		if failures[i].Kind == operation.KindNotEmpty {
			failures[i].Blockers = children[failures[i].Path]
		}
	}
}
