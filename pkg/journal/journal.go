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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/pkg/operation"
	"github.com/walteh/parafs/pkg/status"
)

// batchSize caps how many outcomes share one transaction.
const batchSize = 256

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	command TEXT NOT NULL,
	args TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	attempted INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	bytes INTEGER NOT NULL DEFAULT 0,
	canceled INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL REFERENCES runs(id),
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	op TEXT NOT NULL,
	dest TEXT,
	ok INTEGER NOT NULL,
	error_kind TEXT,
	error TEXT,
	bytes INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_ok ON outcomes(run_id, ok);
`

// 📒 Journal appends run outcomes to a SQLite database. A Journal records
// one run between Begin and Finish; Record is safe for concurrent use.
type Journal struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.RWMutex
	runID   int64
	records chan operation.Outcome
	done    chan struct{}

	errMu sync.Mutex
	err   error
}

var _ operation.Sink = (*Journal)(nil)

// 🏭 Open creates or opens the journal at path, creating parent directories.
func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Errorf("creating journal directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_loc=auto")
	if err != nil {
		return nil, errors.Errorf("opening journal: %w", err)
	}

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Errorf("initializing journal %s: %w", path, err)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("journal opened")
	return &Journal{db: db, now: time.Now}, nil
}

// 🚀 Begin inserts the run row and starts the background writer. It
// returns the run id.
func (j *Journal) Begin(ctx context.Context, command string, args []string) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.records != nil {
		return 0, errors.New("journal run already in progress")
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (command, args, started_at) VALUES (?, ?, ?)`,
		command, strings.Join(args, "\x00"), j.now())
	if err != nil {
		return 0, errors.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Errorf("reading run id: %w", err)
	}

	j.runID = id
	j.errMu.Lock()
	j.err = nil
	j.errMu.Unlock()
	j.records = make(chan operation.Outcome, batchSize)
	j.done = make(chan struct{})
	go j.write(zerolog.Ctx(ctx), id, j.records, j.done)

	return id, nil
}

// Record queues one outcome for the writer. Outcomes arriving outside a
// run are dropped.
func (j *Journal) Record(o operation.Outcome) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.records == nil {
		return
	}
	j.records <- o
}

// ✅ Finish flushes queued outcomes and stores the summary on the run row.
// The first write error seen by the writer is returned.
func (j *Journal) Finish(ctx context.Context, s status.Summary) error {
	j.mu.Lock()
	records, done, id := j.records, j.done, j.runID
	j.records = nil
	j.mu.Unlock()

	if records == nil {
		return errors.New("journal run not started")
	}
	close(records)
	<-done

	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, attempted = ?, succeeded = ?, failed = ?, bytes = ?, canceled = ? WHERE id = ?`,
		j.now(), s.Attempted, s.Succeeded, s.Failed, s.Bytes, s.Canceled, id)
	if err != nil {
		return errors.Errorf("finalizing run %d: %w", id, err)
	}

	j.errMu.Lock()
	defer j.errMu.Unlock()
	return j.err
}

// Close closes the database. A run still in progress is flushed first.
func (j *Journal) Close() error {
	j.mu.Lock()
	records, done := j.records, j.done
	j.records = nil
	j.mu.Unlock()

	if records != nil {
		close(records)
		<-done
	}
	return j.db.Close()
}

func (j *Journal) write(logger *zerolog.Logger, runID int64, records <-chan operation.Outcome, done chan<- struct{}) {
	defer close(done)

	batch := make([]operation.Outcome, 0, batchSize)
	for o := range records {
		batch = append(batch[:0], o)
	drain:
		for len(batch) < batchSize {
			select {
			case next, ok := <-records:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}

		if err := j.insert(runID, batch); err != nil {
			logger.Error().Err(err).Int("outcomes", len(batch)).Msg("journal write failed")
			j.errMu.Lock()
			if j.err == nil {
				j.err = err
			}
			j.errMu.Unlock()
		}
	}
}

func (j *Journal) insert(runID int64, batch []operation.Outcome) error {
	tx, err := j.db.Begin()
	if err != nil {
		return errors.Errorf("beginning journal transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO outcomes (
		run_id, path, kind, op, dest, ok, error_kind, error, bytes, duration_ns, recorded_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Errorf("preparing journal insert: %w", err)
	}
	defer stmt.Close()

	recorded := j.now()
	for _, o := range batch {
		var errKind, errMsg sql.NullString
		if o.Err != nil {
			errKind = sql.NullString{String: operation.Classify(o.Err).String(), Valid: true}
			errMsg = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		if _, err := stmt.Exec(
			runID,
			o.Unit.Entry.Path,
			o.Unit.Entry.Kind.String(),
			o.Unit.Op.String(),
			o.Unit.Dest,
			o.OK(),
			errKind,
			errMsg,
			o.Bytes,
			o.Duration.Nanoseconds(),
			recorded,
		); err != nil {
			tx.Rollback()
			return errors.Errorf("inserting outcome %s: %w", o.Unit.Entry.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Errorf("committing journal batch: %w", err)
	}
	return nil
}
