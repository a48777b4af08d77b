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

package journal

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrRunNotFound is returned by Run for an unknown id.
var ErrRunNotFound = errors.Base("run not found")

// Run is one row of the runs table.
type Run struct {
	ID         int64
	Command    string
	Args       []string
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
	Attempted  int
	Succeeded  int
	Failed     int
	Bytes      int64
	Canceled   bool
}

// Entry is one recorded outcome.
type Entry struct {
	RunID     int64
	Path      string
	Kind      string
	Op        string
	Dest      string
	OK        bool
	ErrorKind string
	Error     string
	Bytes     int64
	Duration  time.Duration
}

// 🔍 Run returns the run row for id.
func (j *Journal) Run(ctx context.Context, id int64) (Run, error) {
	var (
		r        Run
		args     string
		finished sql.NullTime
	)
	err := j.db.QueryRowContext(ctx,
		`SELECT id, command, args, started_at, finished_at, attempted, succeeded, failed, bytes, canceled
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Command, &args, &r.StartedAt, &finished, &r.Attempted, &r.Succeeded, &r.Failed, &r.Bytes, &r.Canceled)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.WithStack(ErrRunNotFound)
	}
	if err != nil {
		return Run{}, errors.Errorf("querying run %d: %w", id, err)
	}

	if args != "" {
		r.Args = strings.Split(args, "\x00")
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return r, nil
}

// 🔍 Outcomes returns every outcome recorded for the run, in insertion order.
func (j *Journal) Outcomes(ctx context.Context, runID int64) ([]Entry, error) {
	return j.entries(ctx, `WHERE run_id = ? ORDER BY id`, runID)
}

// 🔍 Failures returns the failed outcomes of the run, in insertion order.
func (j *Journal) Failures(ctx context.Context, runID int64) ([]Entry, error) {
	return j.entries(ctx, `WHERE run_id = ? AND ok = 0 ORDER BY id`, runID)
}

func (j *Journal) entries(ctx context.Context, where string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, path, kind, op, dest, ok, error_kind, error, bytes, duration_ns FROM outcomes `+where, args...)
	if err != nil {
		return nil, errors.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                     Entry
			dest, errKind, errMsg sql.NullString
			duration              int64
		)
		if err := rows.Scan(&e.RunID, &e.Path, &e.Kind, &e.Op, &dest, &e.OK, &errKind, &errMsg, &e.Bytes, &duration); err != nil {
			return nil, errors.Errorf("scanning outcome: %w", err)
		}
		e.Dest = dest.String
		e.ErrorKind = errKind.String
		e.Error = errMsg.String
		e.Duration = time.Duration(duration)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("iterating outcomes: %w", err)
	}
	return out, nil
}
