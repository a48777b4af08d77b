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
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/walteh/parafs/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// ⏳ Progress counts completed entries and renders a live line with a
// pterm area. It is an operation.Sink.
type Progress struct {
	formatter Formatter
	now       func() time.Time

	mu      sync.Mutex
	start   time.Time
	files   int64
	dirs    int64
	bytes   int64
	current string

	area *pterm.AreaPrinter
	stop chan struct{}
	done chan struct{}
}

var _ operation.Sink = (*Progress)(nil)

// 🏭 NewProgress creates a progress tracker; elapsed time is measured from now.
func NewProgress(formatter Formatter) *Progress {
	if formatter == nil {
		formatter = DefaultFormatter{}
	}
	return &Progress{
		formatter: formatter,
		now:       time.Now,
		start:     time.Now(),
	}
}

// Record counts a successful outcome.
func (p *Progress) Record(o operation.Outcome) {
	if !o.OK() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if o.Unit.Entry.IsDir() {
		p.dirs++
	} else {
		p.files++
	}
	p.bytes += o.Bytes
	p.current = o.Unit.Entry.Path
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Files:   p.files,
		Dirs:    p.dirs,
		Bytes:   p.bytes,
		Elapsed: p.now().Sub(p.start),
		Current: p.current,
	}
}

// Line formats the current snapshot.
func (p *Progress) Line() string {
	return p.formatter.FormatProgress(p.Snapshot())
}

// Start renders the progress line every interval until Stop.
func (p *Progress) Start(interval time.Duration) error {
	area, err := pterm.DefaultArea.Start(p.Line())
	if err != nil {
		return errors.Errorf("starting progress area: %w", err)
	}

	p.area = area
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.area.Update(p.Line())
			case <-p.stop:
				return
			}
		}
	}()
	return nil
}

// Stop renders the final line and releases the area.
func (p *Progress) Stop() error {
	if p.area == nil {
		return nil
	}
	close(p.stop)
	<-p.done

	p.area.Update(p.Line())
	if err := p.area.Stop(); err != nil {
		return errors.Errorf("stopping progress area: %w", err)
	}
	p.area = nil
	return nil
}
