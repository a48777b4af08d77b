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
	"time"

	"github.com/walteh/parafs/pkg/fsys"
	"github.com/walteh/parafs/pkg/walk"
)

// 🔧 Op is the action applied to an entry.
type Op uint8

const (
	OpRemove Op = iota
	OpCopy
)

// String returns a string representation of Op
func (o Op) String() string {
	switch o {
	case OpRemove:
		return "remove"
	case OpCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// 📦 Unit is one entry paired with the action to apply to it.
type Unit struct {
	Entry walk.Entry
	Op    Op
	Dest  string // Destination path, copy only
}

// Result is what an Executor reports on success.
type Result struct {
	Bytes int64
}

// 📋 Outcome is the terminal record for one Unit. Err is nil on success.
type Outcome struct {
	Unit     Unit
	Err      error
	Bytes    int64
	Started  time.Time
	Duration time.Duration
}

// OK reports whether the unit succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// 🎯 Executor performs the filesystem action for a unit. Implementations
// are called from many workers at once and must not retain the unit.
type Executor interface {
	Execute(ctx context.Context, u Unit) (Result, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, u Unit) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, u Unit) (Result, error) {
	return f(ctx, u)
}

// 📥 Sink receives every Outcome exactly once. Record is called from worker
// goroutines and must be safe for concurrent use.
type Sink interface {
	Record(o Outcome)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(o Outcome)

func (f SinkFunc) Record(o Outcome) {
	f(o)
}

// Sinks fans an Outcome out to several sinks in order.
type Sinks []Sink

func (s Sinks) Record(o Outcome) {
	for _, sink := range s {
		if sink != nil {
			sink.Record(o)
		}
	}
}

// 👀 Observer is notified around each execution. Units that never execute
// (abandoned, canceled, walk failures) produce no Observer calls.
type Observer interface {
	Started(u Unit)
	Finished(o Outcome)
}

// 🔧 Options configures the executors.
type Options struct {
	// FS is the filesystem to act on; defaults to the OS filesystem
	FS fsys.FS
	// Force retries a permission-denied removal once after chmod 0777
	Force bool
	// Verify re-reads copied files and compares xxhash64 digests
	Verify bool
	// Preserve copies permission bits and modification times
	Preserve bool
}

// BaseOperation holds what every executor shares.
type BaseOperation struct {
	FS   fsys.FS
	opts Options
}

// NewBaseOperation applies defaults to opts.
func NewBaseOperation(opts Options) BaseOperation {
	if opts.FS == nil {
		opts.FS = fsys.NewOS()
	}
	return BaseOperation{FS: opts.FS, opts: opts}
}
