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

package operation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
)

// 🔧 RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Workers is the pool size and the initial execution limit (minimum 1)
	Workers int
	// Executor performs each unit
	Executor Executor
	// Sink receives every outcome
	Sink Sink
	// Observer is optional
	Observer Observer
	// AbandonDependents fails the dependents of a failed unit with
	// ErrAbandoned instead of running them (copy policy)
	AbandonDependents bool
}

// 📊 Stats is a snapshot of runner counters.
type Stats struct {
	Workers  int   // Pool size
	Limit    int   // Current execution limit after degradation
	Inflight int   // Units executing right now
	Peak     int   // Highest Inflight observed
	Accepted int64 // Units accepted by Submit or Report
	Executed int64 // Units that reached the Executor
}

// 📌 Task is the handle of an accepted unit, used as a prerequisite for
// later submissions.
type Task struct {
	unit       Unit
	remaining  int
	dependents []*Task
	done       bool
	err        error
	abandon    error
}

// Unit returns the unit this task runs.
func (t *Task) Unit() Unit {
	return t.unit
}

// 🏃 Runner is a fixed worker pool that executes units once their
// prerequisites have reported.
type Runner struct {
	exec     Executor
	sink     Sink
	observer Observer
	abandon  bool
	workers  int

	sem    *semaphore.Weighted
	intake chan *Task
	wake   chan struct{}
	quit   chan struct{}
	wg     sync.WaitGroup

	ctx    context.Context
	logger *zerolog.Logger

	mu       sync.Mutex
	ready    []*Task
	pending  int
	started  bool
	closed   bool
	quitOnce sync.Once
	limit    int
	inflight int
	peak     int
	accepted int64
	executed int64
}

// 🏗️ NewRunner creates a runner. Call Start before submitting.
func NewRunner(opts RunnerOptions) *Runner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	sink := opts.Sink
	if sink == nil {
		sink = Sinks(nil)
	}
	return &Runner{
		exec:     opts.Executor,
		sink:     sink,
		observer: opts.Observer,
		abandon:  opts.AbandonDependents,
		workers:  workers,
		sem:      semaphore.NewWeighted(int64(workers)),
		intake:   make(chan *Task, workers),
		wake:     make(chan struct{}, workers),
		quit:     make(chan struct{}),
		limit:    workers,
	}
}

// Start launches the workers. Canceling ctx drains the runner: units that
// are executing finish, every other accepted unit reports ErrCanceled.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.ctx = ctx
	r.logger = zerolog.Ctx(ctx)

	r.wg.Add(r.workers)
	for i := 0; i < r.workers; i++ {
		go r.work()
	}
	r.logger.Debug().Int("workers", r.workers).Msg("runner started")
}

// Submit accepts u, to run after every task in after has reported. It blocks
// while the intake queue is full. Once the runner's context is canceled it
// returns ErrDraining and the unit is not accepted.
func (r *Runner) Submit(ctx context.Context, u Unit, after ...*Task) (*Task, error) {
	t, err := r.accept(u)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	for _, p := range after {
		if p == nil {
			continue
		}
		if !p.done {
			p.dependents = append(p.dependents, t)
			t.remaining++
			continue
		}
		r.inherit(t, p)
	}
	held := t.remaining > 0
	r.mu.Unlock()

	if held {
		return t, nil
	}

	select {
	case r.intake <- t:
	case <-r.ctx.Done():
		r.push(t)
	case <-ctx.Done():
		r.push(t)
	}
	return t, nil
}

// Report accepts u as already failed with err without executing it. It is
// used for entries the walker could not process, so they still produce
// exactly one outcome and release their dependents.
func (r *Runner) Report(u Unit, err error) (*Task, error) {
	t, aerr := r.accept(u)
	if aerr != nil {
		return nil, aerr
	}
	r.finish(t, Outcome{Unit: u, Err: err, Started: time.Now()})
	return t, nil
}

// Wait stops accepting units, waits for every accepted unit to report and
// returns the final counters. The runner cannot be reused.
func (r *Runner) Wait() Stats {
	r.mu.Lock()
	r.closed = true
	if r.pending == 0 {
		r.quitOnce.Do(func() { close(r.quit) })
	}
	r.mu.Unlock()

	r.wg.Wait()

	stats := r.Stats()
	if r.logger != nil {
		r.logger.Debug().
			Int64("accepted", stats.Accepted).
			Int64("executed", stats.Executed).
			Int("peak", stats.Peak).
			Int("limit", stats.Limit).
			Msg("runner finished")
	}
	return stats
}

// Stats returns the current counters.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Workers:  r.workers,
		Limit:    r.limit,
		Inflight: r.inflight,
		Peak:     r.peak,
		Accepted: r.accepted,
		Executed: r.executed,
	}
}

func (r *Runner) accept(u Unit) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case !r.started:
		return nil, errors.New("runner not started")
	case r.closed:
		return nil, errors.WithStack(ErrClosed)
	case r.ctx.Err() != nil:
		return nil, errors.WithStack(ErrDraining)
	}
	r.pending++
	r.accepted++
	return &Task{unit: u}, nil
}

// inherit applies the outcome of a finished prerequisite p to t. Callers
// hold r.mu.
func (r *Runner) inherit(t, p *Task) {
	if !r.abandon || p.err == nil || t.abandon != nil {
		return
	}
	if Classify(p.err) == KindCanceled {
		t.abandon = errors.WithStack(ErrCanceled)
		return
	}
	t.abandon = errors.Errorf("%w: %s failed", ErrAbandoned, p.unit.Entry.Path)
}

// push queues an eligible task outside the bounded intake.
func (r *Runner) push(t *Task) {
	r.mu.Lock()
	r.ready = append(r.ready, t)
	r.mu.Unlock()
	r.signal()
}

func (r *Runner) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		t := r.next()
		if t == nil {
			return
		}
		r.run(t)
	}
}

func (r *Runner) next() *Task {
	for {
		r.mu.Lock()
		if n := len(r.ready); n > 0 {
			t := r.ready[n-1]
			r.ready = r.ready[:n-1]
			r.mu.Unlock()
			return t
		}
		r.mu.Unlock()

		select {
		case t := <-r.intake:
			return t
		case <-r.wake:
		case <-r.quit:
			return nil
		}
	}
}

func (r *Runner) run(t *Task) {
	start := time.Now()

	if r.ctx.Err() != nil {
		r.finish(t, Outcome{Unit: t.unit, Err: errors.WithStack(ErrCanceled), Started: start})
		return
	}
	if t.abandon != nil {
		r.finish(t, Outcome{Unit: t.unit, Err: t.abandon, Started: start})
		return
	}
	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		r.finish(t, Outcome{Unit: t.unit, Err: errors.WithStack(ErrCanceled), Started: start})
		return
	}

	r.mu.Lock()
	r.inflight++
	if r.inflight > r.peak {
		r.peak = r.inflight
	}
	r.mu.Unlock()

	if r.observer != nil {
		r.observer.Started(t.unit)
	}

	// units already executing run to completion during a drain
	res, err := r.exec.Execute(context.WithoutCancel(r.ctx), t.unit)
	o := Outcome{Unit: t.unit, Err: err, Bytes: res.Bytes, Started: start, Duration: time.Since(start)}

	r.mu.Lock()
	r.inflight--
	r.executed++
	degrade := IsResourceExhaustion(err) && r.limit > 1
	if degrade {
		r.limit--
	}
	limit := r.limit
	r.mu.Unlock()

	if degrade {
		// the permit is kept, permanently lowering the limit
		r.logger.Warn().Err(err).Int("limit", limit).Msg("resource exhaustion, reducing concurrency")
	} else {
		r.sem.Release(1)
	}

	if r.observer != nil {
		r.observer.Finished(o)
	}
	r.finish(t, o)
}

// finish records the outcome and then releases dependents.
func (r *Runner) finish(t *Task, o Outcome) {
	r.sink.Record(o)

	r.mu.Lock()
	t.done = true
	t.err = o.Err
	released := 0
	for _, d := range t.dependents {
		r.inherit(d, t)
		d.remaining--
		if d.remaining == 0 {
			r.ready = append(r.ready, d)
			released++
		}
	}
	t.dependents = nil
	r.pending--
	if r.closed && r.pending == 0 {
		r.quitOnce.Do(func() { close(r.quit) })
	}
	r.mu.Unlock()

	for i := 0; i < released; i++ {
		r.signal()
	}
}
