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
	"fmt"
	"strings"
	"time"
)

// 📈 Snapshot is a point-in-time view of progress counters.
type Snapshot struct {
	Files   int64
	Dirs    int64
	Bytes   int64
	Elapsed time.Duration
	Current string
}

// ItemsPerSecond returns completed entries per second.
func (s Snapshot) ItemsPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Files+s.Dirs) / secs
}

// BytesPerSecond returns throughput in bytes per second.
func (s Snapshot) BytesPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Bytes) / secs
}

// 🎨 Formatter turns progress and failures into display text.
type Formatter interface {
	// FormatProgress formats the live progress line
	FormatProgress(s Snapshot) string

	// FormatFailure formats one failed unit
	FormatFailure(f Failure) string

	// FormatSummary formats the final totals
	FormatSummary(s Summary) string
}

// DefaultFormatter is the plain text Formatter.
type DefaultFormatter struct{}

var _ Formatter = DefaultFormatter{}

func (DefaultFormatter) FormatProgress(s Snapshot) string {
	line := fmt.Sprintf("%d files, %d dirs, total size: %s, %.2f items/s, %s/s, elapsed: %s",
		s.Files, s.Dirs,
		FormatBytes(float64(s.Bytes)),
		s.ItemsPerSecond(),
		FormatBytes(s.BytesPerSecond()),
		FormatElapsed(s.Elapsed))
	if s.Current != "" {
		line += ", current: " + s.Current
	}
	return line
}

func (DefaultFormatter) FormatFailure(f Failure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %v", f.Kind, f.Err)
	if len(f.Blockers) > 0 {
		fmt.Fprintf(&b, " (blocked by %s)", strings.Join(f.Blockers, ", "))
	}
	return b.String()
}

func (DefaultFormatter) FormatSummary(s Summary) string {
	line := fmt.Sprintf("%d attempted, %d succeeded, %d failed, %s in %s",
		s.Attempted, s.Succeeded, s.Failed, FormatBytes(float64(s.Bytes)), FormatElapsed(s.Elapsed))
	if n := len(s.Warnings); n > 0 {
		line += fmt.Sprintf(", %d warnings", n)
	}
	if s.Canceled {
		line += " (canceled)"
	}
	return line
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(n float64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%.0f B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KiB", n/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.2f MiB", n/1024/1024)
	default:
		return fmt.Sprintf("%.2f GiB", n/1024/1024/1024)
	}
}

// FormatElapsed renders seconds below a minute, then m:ss and h:mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
	total := int64(d / time.Second)
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h == 0 {
		return fmt.Sprintf("%d:%02d", m, sec)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
