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

// Package metrics exposes per-run Prometheus series for bulk operations.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/parafs/pkg/operation"
)

const namespace = "parafs"

// Result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// 📈 Metrics holds the series for one run on a private registry. It is
// both an operation.Observer and an operation.Sink.
type Metrics struct {
	registry *prometheus.Registry

	Units    *prometheus.CounterVec
	Bytes    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Inflight prometheus.Gauge
	Limit    prometheus.Gauge
}

var (
	_ operation.Observer = (*Metrics)(nil)
	_ operation.Sink     = (*Metrics)(nil)
)

// 🏭 New creates the series and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Units that reached a terminal outcome, by operation and result.",
		}, []string{"op", "result"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "File bytes removed or copied by successful units.",
		}, []string{"op"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Time spent executing a unit.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"}),
		Inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_units",
			Help:      "Units currently executing.",
		}),
		Limit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_limit",
			Help:      "Effective execution limit after resource exhaustion degradation.",
		}),
	}

	m.registry.MustRegister(m.Units, m.Bytes, m.Duration, m.Inflight, m.Limit)
	return m
}

// Registry returns the registry holding the run's series.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Started marks a unit as executing.
func (m *Metrics) Started(u operation.Unit) {
	m.Inflight.Inc()
}

// Finished observes the execution time of an executed unit.
func (m *Metrics) Finished(o operation.Outcome) {
	m.Inflight.Dec()
	m.Duration.WithLabelValues(o.Unit.Op.String()).Observe(o.Duration.Seconds())
}

// Record counts every outcome, including units that never executed.
func (m *Metrics) Record(o operation.Outcome) {
	op := o.Unit.Op.String()
	if !o.OK() {
		m.Units.WithLabelValues(op, ResultFailed).Inc()
		return
	}
	m.Units.WithLabelValues(op, ResultOK).Inc()
	m.Bytes.WithLabelValues(op).Add(float64(o.Bytes))
}

// SetLimit records the runner's effective execution limit.
func (m *Metrics) SetLimit(limit int64) {
	m.Limit.Set(float64(limit))
}

// 💾 WriteFile writes the registry in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating metrics directory %s: %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
